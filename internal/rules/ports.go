package rules

import (
	"context"

	"github.com/garyjia/asana-automation/internal/asana"
)

// TaskService is the task-facing slice of the tracker API consumed by the
// rule handlers.
type TaskService interface {
	GetTask(ctx context.Context, taskGID string) (*asana.Task, error)
	UpdateTask(ctx context.Context, taskGID string, fields map[string]interface{}) error
	DeleteTask(ctx context.Context, taskGID string) error
	GetComments(ctx context.Context, taskGID string) ([]asana.Story, error)
	GetAttachments(ctx context.Context, taskGID string) ([]asana.Attachment, error)
	ListProjectTasks(ctx context.Context, projectGID string) ([]asana.TaskRef, error)
}

// UserDirectory resolves workspace users.
type UserDirectory interface {
	GetUser(ctx context.Context, userGID string) (*asana.User, error)
	ListUsers(ctx context.Context, workspaceGID string) ([]asana.User, error)
}

// EnumOptionSource fetches the option mapping of the monitored status field.
// Fetched per evaluation; never cached across rule invocations.
type EnumOptionSource interface {
	GetEnumOptions(ctx context.Context, fieldGID string) (*asana.EnumOptions, error)
}

// ScoreSheet is the spreadsheet side of the scoring system.
type ScoreSheet interface {
	AppendCompany(company string) error
	UpdateCompanyStatus(company, status string) error
}

// Notifier posts best-effort outcome messages to the chat channel.
type Notifier interface {
	Notify(ctx context.Context, text string)
	NotifyRule(ctx context.Context, taskGID, action, description string)
	NotifyFailure(ctx context.Context, taskGID, reason, rule string)
}
