package rules

import (
	"context"

	"github.com/garyjia/asana-automation/internal/event"
	"go.uber.org/zap"
)

// statusFeasibilityEvaluating is the option the gate promotes tasks into.
const statusFeasibilityEvaluating = "Feasibility Evaluating"

// FeasibilityEvaluating promotes a task to "Feasibility Evaluating" when it
// is assigned to one of the project managers and already carries both a
// comment and an attachment. Missing material is a silent no-op; the task is
// left for manual follow-up.
type FeasibilityEvaluating struct {
	tasks           TaskService
	users           UserDirectory
	options         EnumOptionSource
	notifier        Notifier
	projectManagers map[string]struct{}
	cfg             Config
	logger          *zap.Logger
}

// NewFeasibilityEvaluating creates the feasibility-gate rule handler.
func NewFeasibilityEvaluating(tasks TaskService, users UserDirectory, options EnumOptionSource, notifier Notifier, cfg Config, logger *zap.Logger) *FeasibilityEvaluating {
	pms := make(map[string]struct{}, len(cfg.ProjectManagers))
	for _, name := range cfg.ProjectManagers {
		pms[name] = struct{}{}
	}

	return &FeasibilityEvaluating{
		tasks:           tasks,
		users:           users,
		options:         options,
		notifier:        notifier,
		projectManagers: pms,
		cfg:             cfg,
		logger:          logger,
	}
}

// Name identifies the rule in logs and failure notifications.
func (r *FeasibilityEvaluating) Name() string { return "Feasibility Evaluating" }

// Handle processes the "changed" bucket of one batch.
func (r *FeasibilityEvaluating) Handle(ctx context.Context, tasks event.TaskEvents) {
	if len(tasks) == 0 {
		r.logger.Info("No events to process", zap.String("rule", r.Name()))
		return
	}

	for taskGID, events := range tasks {
		if !event.HasChangeEvent(events) {
			continue
		}
		changes := event.AssigneeChanges(events)
		if len(changes) == 0 {
			r.logger.Debug("No assignee change", zap.String("task_gid", taskGID))
			continue
		}
		r.handleAssigneeChanges(ctx, taskGID, changes)
	}
}

func (r *FeasibilityEvaluating) handleAssigneeChanges(ctx context.Context, taskGID string, changes []event.Change) {
	for _, change := range changes {
		if change.NewValue == nil || change.NewValue.GID == "" {
			r.logger.Info("Assignee cleared, skipping", zap.String("task_gid", taskGID))
			continue
		}

		user, err := r.users.GetUser(ctx, change.NewValue.GID)
		if err != nil {
			r.logger.Error("Failed to fetch assignee",
				zap.String("task_gid", taskGID),
				zap.String("user_gid", change.NewValue.GID),
				zap.Error(err))
			continue
		}
		if _, ok := r.projectManagers[user.Name]; !ok {
			r.logger.Debug("Assignee is not a project manager",
				zap.String("task_gid", taskGID),
				zap.String("assignee", user.Name))
			continue
		}

		if !r.hasReviewMaterial(ctx, taskGID) {
			continue
		}

		options, err := r.options.GetEnumOptions(ctx, r.cfg.StatusFieldGID)
		if err != nil {
			r.logger.Error("Failed to fetch status options",
				zap.String("task_gid", taskGID), zap.Error(err))
			continue
		}
		optionGID, ok := options.ByName[statusFeasibilityEvaluating]
		if !ok {
			r.logger.Error("Status option missing from field",
				zap.String("option", statusFeasibilityEvaluating))
			continue
		}

		update := map[string]interface{}{
			"custom_type_status_option": optionGID,
		}
		if err := r.tasks.UpdateTask(ctx, taskGID, update); err != nil {
			r.logger.Error("Failed to update task status",
				zap.String("task_gid", taskGID), zap.Error(err))
			continue
		}

		r.notifier.NotifyRule(ctx, taskGID,
			"Set status to \""+statusFeasibilityEvaluating+"\"",
			"When a project manager is assigned and the task has a comment and an attachment, move it to feasibility evaluation")

		// One promotion per task per batch is enough.
		return
	}
}

// hasReviewMaterial reports whether the task carries both at least one
// comment and at least one attachment.
func (r *FeasibilityEvaluating) hasReviewMaterial(ctx context.Context, taskGID string) bool {
	comments, err := r.tasks.GetComments(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch comments",
			zap.String("task_gid", taskGID), zap.Error(err))
		return false
	}
	attachments, err := r.tasks.GetAttachments(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch attachments",
			zap.String("task_gid", taskGID), zap.Error(err))
		return false
	}

	if len(comments) == 0 || len(attachments) == 0 {
		r.logger.Info("Task lacks comment or attachment, leaving for manual follow-up",
			zap.String("task_gid", taskGID),
			zap.Int("comments", len(comments)),
			zap.Int("attachments", len(attachments)))
		return false
	}
	return true
}
