package rules

import (
	"context"
	"errors"
	"strings"

	"github.com/garyjia/asana-automation/internal/event"
	"github.com/garyjia/asana-automation/internal/scoring"
	"go.uber.org/zap"
)

// ScoringStatus mirrors a task's status option into the scoring sheet row
// whose company column matches the task name. It never creates rows; missing
// companies are reported through the notifier and skipped.
type ScoringStatus struct {
	tasks    TaskService
	sheet    ScoreSheet
	notifier Notifier
	logger   *zap.Logger
}

// NewScoringStatus creates the status-mirroring rule handler.
func NewScoringStatus(tasks TaskService, sheet ScoreSheet, notifier Notifier, logger *zap.Logger) *ScoringStatus {
	return &ScoringStatus{
		tasks:    tasks,
		sheet:    sheet,
		notifier: notifier,
		logger:   logger,
	}
}

// Name identifies the rule in logs and failure notifications.
func (r *ScoringStatus) Name() string { return "Project Scoring Status" }

// Handle processes the "changed" bucket of one batch.
func (r *ScoringStatus) Handle(ctx context.Context, tasks event.TaskEvents) {
	if len(tasks) == 0 {
		r.logger.Info("No events to process", zap.String("rule", r.Name()))
		return
	}

	for taskGID, events := range tasks {
		if !event.HasChangeEvent(events) {
			continue
		}
		r.handleTask(ctx, taskGID)
	}
}

func (r *ScoringStatus) handleTask(ctx context.Context, taskGID string) {
	task, err := r.tasks.GetTask(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}

	company := strings.TrimSpace(task.Name)
	if company == "" {
		r.logger.Warn("Task has no name to mirror", zap.String("task_gid", taskGID))
		r.notifier.NotifyFailure(ctx, taskGID,
			"Task has no company name, scoring sheet update skipped", r.Name())
		return
	}

	status := strings.TrimSpace(task.StatusOptionName())
	if status == "" {
		r.logger.Debug("Task has no status option", zap.String("task_gid", taskGID))
		return
	}

	if err := r.sheet.UpdateCompanyStatus(company, status); err != nil {
		if errors.Is(err, scoring.ErrRowNotFound) {
			r.notifier.NotifyFailure(ctx, taskGID,
				"'"+company+"' is not on the scoring sheet, update failed", r.Name())
			return
		}
		r.logger.Error("Failed to update scoring sheet",
			zap.String("company", company), zap.Error(err))
		return
	}

	r.notifier.NotifyRule(ctx, taskGID,
		"Updated \""+company+"\" status to \""+status+"\" on the scoring sheet",
		"When a task's status changes, mirror it into the scoring sheet")
}
