package rules

import (
	"context"
	"time"

	"github.com/garyjia/asana-automation/internal/event"
	"github.com/garyjia/asana-automation/internal/match"
	"go.uber.org/zap"
)

// statusPendingApproval is the status option name this rule gates on.
const statusPendingApproval = "Pending Approval"

// salesOwnerField is the custom field carrying the sales owner's name as
// free text.
const salesOwnerField = "Sales Owner"

// dueDateOffsetDays is how far in the future the due date is pushed when a
// task enters pending approval.
const dueDateOffsetDays = 14

// PendingApproval reassigns and reschedules tasks that were moved to the
// "Pending Approval" status: due date two weeks out, assignee resolved from
// the Sales Owner field by fuzzy name matching against the workspace
// directory.
type PendingApproval struct {
	tasks    TaskService
	users    UserDirectory
	options  EnumOptionSource
	notifier Notifier
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

// NewPendingApproval creates the pending-approval rule handler.
func NewPendingApproval(tasks TaskService, users UserDirectory, options EnumOptionSource, notifier Notifier, cfg Config, logger *zap.Logger) *PendingApproval {
	return &PendingApproval{
		tasks:    tasks,
		users:    users,
		options:  options,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Name identifies the rule in logs and failure notifications.
func (r *PendingApproval) Name() string { return "Pending Approval" }

// Handle processes the "changed" bucket of one batch. Each qualifying task
// gets exactly one update call and one notification; a failure on one task
// never blocks the others.
func (r *PendingApproval) Handle(ctx context.Context, tasks event.TaskEvents) {
	if len(tasks) == 0 {
		r.logger.Info("No events to process", zap.String("rule", r.Name()))
		return
	}

	options, err := r.options.GetEnumOptions(ctx, r.cfg.StatusFieldGID)
	if err != nil {
		r.logger.Error("Failed to fetch status options",
			zap.String("rule", r.Name()), zap.Error(err))
		return
	}

	for taskGID, events := range tasks {
		if !event.HasChangeEvent(events) {
			continue
		}
		if !event.HasEnumOptionChange(events, options.ByID) {
			r.logger.Debug("No status option change", zap.String("task_gid", taskGID))
			continue
		}
		r.handleTask(ctx, taskGID)
	}
}

func (r *PendingApproval) handleTask(ctx context.Context, taskGID string) {
	task, err := r.tasks.GetTask(ctx, taskGID)
	if err != nil {
		r.logger.Error("Failed to fetch task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}
	if task.StatusOptionName() != statusPendingApproval {
		r.logger.Debug("Task not in pending approval",
			zap.String("task_gid", taskGID),
			zap.String("status", task.StatusOptionName()))
		return
	}

	owner := task.CustomField(salesOwnerField)
	if owner == nil {
		r.logger.Error("Sales owner field not found", zap.String("task_gid", taskGID))
		return
	}

	// Explicit nil unassigns when no owner could be resolved; the due date
	// is pushed out either way.
	update := map[string]interface{}{
		"due_on":   r.dueDate(),
		"assignee": nil,
	}

	user, score := r.resolveOwner(ctx, owner.DisplayValue)
	if user == nil {
		r.notifier.NotifyFailure(ctx, taskGID,
			"Sales owner '"+owner.DisplayValue+"' has no confident user match, leaving task unassigned",
			r.Name())
	} else {
		update["assignee"] = user.GID
		r.logger.Info("Resolved sales owner",
			zap.String("task_gid", taskGID),
			zap.String("owner", owner.DisplayValue),
			zap.String("user", user.Name),
			zap.Int("score", score))
	}

	if err := r.tasks.UpdateTask(ctx, taskGID, update); err != nil {
		r.logger.Error("Failed to update task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return
	}

	if user != nil {
		r.notifier.NotifyRule(ctx, taskGID,
			"Assigned "+user.Name+" and set due date",
			"When status changes to \"Pending Approval\", assign the sales owner and set the due date two weeks out")
	}
}

// resolveOwner fuzzy-matches the sales owner display text against the
// workspace user directory. Returns nil when no candidate reaches the
// configured similarity threshold.
func (r *PendingApproval) resolveOwner(ctx context.Context, ownerName string) (*userRef, int) {
	if ownerName == "" {
		return nil, 0
	}

	users, err := r.users.ListUsers(ctx, r.cfg.WorkspaceGID)
	if err != nil {
		r.logger.Error("Failed to list workspace users", zap.Error(err))
		return nil, 0
	}

	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}

	idx, score, ok := match.Best(ownerName, names, r.cfg.MatchThreshold)
	if !ok {
		r.logger.Warn("No confident user match",
			zap.String("owner", ownerName),
			zap.Int("best_score", score))
		return nil, score
	}
	return &userRef{GID: users[idx].GID, Name: users[idx].Name}, score
}

type userRef struct {
	GID  string
	Name string
}

// dueDate is the evaluation-time UTC date plus the offset, date only.
func (r *PendingApproval) dueDate() string {
	return r.now().UTC().AddDate(0, 0, dueDateOffsetDays).Format("2006-01-02")
}
