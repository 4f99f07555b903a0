package rules

import (
	"context"

	"go.uber.org/zap"
)

// businessValueField is the numeric custom field mirrored from the scoring
// sheet back onto the task.
const businessValueField = "Business Value"

// Result is the structured outcome of the synchronous business-value update.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func successResult(msg string) Result { return Result{Status: "success", Message: msg} }
func errorResult(msg string) Result   { return Result{Status: "error", Message: msg} }

// BusinessValue writes a sheet-provided business value into the matching
// task's custom field. This is the one inbound path that answers
// synchronously with a structured result instead of background
// notifications.
type BusinessValue struct {
	tasks    TaskService
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

// NewBusinessValue creates the business-value updater.
func NewBusinessValue(tasks TaskService, notifier Notifier, cfg Config, logger *zap.Logger) *BusinessValue {
	return &BusinessValue{
		tasks:    tasks,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Update locates the task whose name exactly matches companyName in the
// monitored project and writes value into its business-value custom field.
// Every lookup failure returns an error result; nothing is thrown.
func (b *BusinessValue) Update(ctx context.Context, companyName string, value float64) Result {
	b.logger.Info("Updating business value",
		zap.String("company", companyName),
		zap.Float64("value", value))

	taskList, err := b.tasks.ListProjectTasks(ctx, b.cfg.ProjectGID)
	if err != nil {
		b.logger.Error("Failed to fetch project task list", zap.Error(err))
		return errorResult("Failed to fetch task list")
	}

	var taskGID string
	for _, ref := range taskList {
		if ref.Name == companyName {
			taskGID = ref.GID
			break
		}
	}
	if taskGID == "" {
		b.logger.Warn("No task matches company name", zap.String("company", companyName))
		return errorResult("No task found for '" + companyName + "'")
	}

	task, err := b.tasks.GetTask(ctx, taskGID)
	if err != nil {
		b.logger.Error("Failed to fetch task",
			zap.String("task_gid", taskGID), zap.Error(err))
		return errorResult("Failed to fetch task info")
	}

	field := task.CustomField(businessValueField)
	if field == nil || field.GID == "" {
		b.logger.Error("Business value field not found", zap.String("task_gid", taskGID))
		return errorResult("Custom field lookup failed")
	}

	update := map[string]interface{}{
		"custom_fields": map[string]interface{}{field.GID: value},
	}
	if err := b.tasks.UpdateTask(ctx, taskGID, update); err != nil {
		b.logger.Error("Failed to update business value",
			zap.String("task_gid", taskGID), zap.Error(err))
		return errorResult("Failed to update task")
	}

	b.notifier.NotifyRule(ctx, taskGID,
		"Updated business value for \""+companyName+"\"",
		"Pulled business value from the project scoring sheet")

	return successResult("Business value updated for '" + companyName + "'")
}
