package rules

import (
	"context"

	"github.com/garyjia/asana-automation/internal/event"
	"go.uber.org/zap"
)

// ForceDelete guards the rename-then-delete pattern: when a task is
// undeleted, it is re-deleted if and only if its name still exactly equals
// the sentinel title. Any other name means a legitimate manual restore and
// the task is left alone.
type ForceDelete struct {
	tasks    TaskService
	notifier Notifier
	logger   *zap.Logger
}

// NewForceDelete creates the anti-restore rule handler.
func NewForceDelete(tasks TaskService, notifier Notifier, logger *zap.Logger) *ForceDelete {
	return &ForceDelete{
		tasks:    tasks,
		notifier: notifier,
		logger:   logger,
	}
}

// Name identifies the rule in logs and failure notifications.
func (r *ForceDelete) Name() string { return "Force Delete" }

// Handle processes the "undeleted" bucket of one batch.
func (r *ForceDelete) Handle(ctx context.Context, tasks event.TaskEvents) {
	if len(tasks) == 0 {
		r.logger.Info("No events to process", zap.String("rule", r.Name()))
		return
	}

	for taskGID := range tasks {
		task, err := r.tasks.GetTask(ctx, taskGID)
		if err != nil {
			r.logger.Error("Failed to fetch undeleted task",
				zap.String("task_gid", taskGID), zap.Error(err))
			continue
		}

		if task.Name != SentinelDeletedTitle {
			r.logger.Debug("Undeleted task is not a rule-deleted item",
				zap.String("task_gid", taskGID),
				zap.String("name", task.Name))
			continue
		}

		// Notify only once the delete actually happened.
		if err := r.tasks.DeleteTask(ctx, taskGID); err != nil {
			r.logger.Error("Failed to re-delete task",
				zap.String("task_gid", taskGID), zap.Error(err))
			r.notifier.NotifyFailure(ctx, taskGID,
				"Failed to re-delete a restored rule-deleted task", r.Name())
			continue
		}

		r.notifier.NotifyRule(ctx, taskGID,
			"Prevented undelete of a rule-deleted task",
			"When a rule-deleted task is restored, delete it again")
	}
}
