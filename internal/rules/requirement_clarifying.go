package rules

import (
	"context"

	"github.com/garyjia/asana-automation/internal/event"
	"go.uber.org/zap"
)

// statusRequirementClarifying is the intake status this rule validates.
const statusRequirementClarifying = "Requirement Clarifying"

// SentinelDeletedTitle marks tasks deleted by the intake rule. Asana cannot
// permanently delete from an automation, so the task is renamed to this
// fixed title before deletion; the force-delete rule re-deletes any restored
// task still carrying it.
const SentinelDeletedTitle = "[Asana Rule Deleted Item]"

// RequirementClarifying validates freshly added intake tasks: complete ones
// (description and attachment present) are forwarded to the scoring sheet as
// a new company, incomplete ones are renamed to the sentinel title and
// deleted.
type RequirementClarifying struct {
	tasks    TaskService
	sheet    ScoreSheet
	notifier Notifier
	logger   *zap.Logger
}

// NewRequirementClarifying creates the intake-validation rule handler.
func NewRequirementClarifying(tasks TaskService, sheet ScoreSheet, notifier Notifier, logger *zap.Logger) *RequirementClarifying {
	return &RequirementClarifying{
		tasks:    tasks,
		sheet:    sheet,
		notifier: notifier,
		logger:   logger,
	}
}

// Name identifies the rule in logs and failure notifications.
func (r *RequirementClarifying) Name() string { return "Requirement Clarifying" }

// Handle processes the "added" bucket of one batch.
func (r *RequirementClarifying) Handle(ctx context.Context, tasks event.TaskEvents) {
	if len(tasks) == 0 {
		r.logger.Info("No events to process", zap.String("rule", r.Name()))
		return
	}

	for taskGID, events := range tasks {
		if !event.HasAddEvent(events) {
			continue
		}
		r.handleTask(ctx, taskGID)
	}
}

func (r *RequirementClarifying) handleTask(ctx context.Context, taskGID string) {
	task, err := r.tasks.GetTask(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}
	if task.StatusOptionName() != statusRequirementClarifying {
		r.logger.Debug("Task not in requirement clarifying",
			zap.String("task_gid", taskGID),
			zap.String("status", task.StatusOptionName()))
		return
	}

	attachments, err := r.tasks.GetAttachments(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch attachments",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}

	if task.Notes != "" && len(attachments) > 0 {
		r.appendCompany(ctx, taskGID, task.Name)
		return
	}

	r.deleteIncomplete(ctx, taskGID)
}

// appendCompany forwards a valid intake task to the scoring sheet, treating
// the task name as the company identifier. A valid task is never deleted.
func (r *RequirementClarifying) appendCompany(ctx context.Context, taskGID, company string) {
	if company == "" {
		r.logger.Warn("Valid intake task has no name, skipping scoring append",
			zap.String("task_gid", taskGID))
		return
	}

	if err := r.sheet.AppendCompany(company); err != nil {
		r.logger.Error("Failed to append company to scoring sheet",
			zap.String("company", company), zap.Error(err))
		r.notifier.NotifyFailure(ctx, taskGID,
			"Failed to add '"+company+"' to the scoring sheet", r.Name())
		return
	}

	r.notifier.NotifyRule(ctx, taskGID,
		"Added \""+company+"\" to the scoring sheet",
		"When a complete intake task is added, register the company for scoring")
}

// deleteIncomplete renames the task to the sentinel title, then deletes it,
// notifying before and after.
func (r *RequirementClarifying) deleteIncomplete(ctx context.Context, taskGID string) {
	r.notifier.NotifyRule(ctx, taskGID,
		"Deleting intake task without description or attachment",
		"When an intake task misses its description or attachment, remove it")

	rename := map[string]interface{}{"name": SentinelDeletedTitle}
	if err := r.tasks.UpdateTask(ctx, taskGID, rename); err != nil {
		r.logger.Error("Failed to rename task before deletion",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}

	if err := r.tasks.DeleteTask(ctx, taskGID); err != nil {
		r.logger.Error("Failed to delete task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}

	r.notifier.Notify(ctx, "Task "+taskGID+" was deleted due to lack of information.")
}
