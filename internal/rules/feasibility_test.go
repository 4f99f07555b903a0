package rules

import (
	"context"
	"testing"

	"github.com/garyjia/asana-automation/internal/asana"
	"github.com/garyjia/asana-automation/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func assigneeChangeEvents(taskGID, userGID string) event.TaskEvents {
	var newValue *event.NewValue
	if userGID != "" {
		newValue = &event.NewValue{GID: userGID}
	}
	return event.TaskEvents{
		taskGID: []event.Event{{
			Action: event.ActionChanged,
			Change: &event.Change{Field: "assignee", NewValue: newValue},
		}},
	}
}

func newFeasibilityFixture(tasks *mockTaskService, users *mockUserDirectory) (*FeasibilityEvaluating, *mockNotifier) {
	notifier := &mockNotifier{}
	options := newMockEnumOptions(map[string]string{
		"opt-feasibility": "Feasibility Evaluating",
		"opt-pending":     "Pending Approval",
	})
	cfg := Config{
		StatusFieldGID:  statusFieldGID,
		ProjectManagers: []string{"Lee", "Lana"},
	}
	return NewFeasibilityEvaluating(tasks, users, options, notifier, cfg, zap.NewNop()), notifier
}

func TestFeasibilityEvaluatingHandle(t *testing.T) {
	t.Run("promotes when a project manager is assigned and material is present", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.comments["t1"] = []asana.Story{{GID: "s1", ResourceSubtype: "comment_added", Text: "looks good"}}
		tasks.attachments["t1"] = []asana.Attachment{{GID: "a1", Name: "requirements.pdf"}}
		users := newMockUserDirectory(asana.User{GID: "u1", Name: "Lee"})
		rule, notifier := newFeasibilityFixture(tasks, users)

		rule.Handle(context.Background(), assigneeChangeEvents("t1", "u1"))

		require.Len(t, tasks.updates, 1)
		assert.Equal(t, "t1", tasks.updates[0].taskGID)
		assert.Equal(t, map[string]interface{}{"custom_type_status_option": "opt-feasibility"}, tasks.updates[0].fields)
		require.Len(t, notifier.rules, 1)
		assert.Equal(t, "t1", notifier.rules[0].taskGID)
	})

	t.Run("one promotion per task even with repeated assignee changes", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.comments["t1"] = []asana.Story{{GID: "s1", ResourceSubtype: "comment_added"}}
		tasks.attachments["t1"] = []asana.Attachment{{GID: "a1"}}
		users := newMockUserDirectory(
			asana.User{GID: "u1", Name: "Lee"},
			asana.User{GID: "u2", Name: "Lana"},
		)
		rule, _ := newFeasibilityFixture(tasks, users)

		batch := event.TaskEvents{
			"t1": []event.Event{
				{Action: event.ActionChanged, Change: &event.Change{Field: "assignee", NewValue: &event.NewValue{GID: "u1"}}},
				{Action: event.ActionChanged, Change: &event.Change{Field: "assignee", NewValue: &event.NewValue{GID: "u2"}}},
			},
		}
		rule.Handle(context.Background(), batch)

		assert.Len(t, tasks.updates, 1)
	})

	t.Run("re-running on unchanged state repeats the same decision", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.comments["t1"] = []asana.Story{{GID: "s1", ResourceSubtype: "comment_added"}}
		tasks.attachments["t1"] = []asana.Attachment{{GID: "a1"}}
		users := newMockUserDirectory(asana.User{GID: "u1", Name: "Lee"})
		rule, notifier := newFeasibilityFixture(tasks, users)
		batch := assigneeChangeEvents("t1", "u1")

		rule.Handle(context.Background(), batch)
		rule.Handle(context.Background(), batch)

		require.Len(t, tasks.updates, 2)
		assert.Equal(t, tasks.updates[0], tasks.updates[1])
		assert.Len(t, notifier.rules, 2)
		assert.Empty(t, notifier.failures)
		assert.Empty(t, tasks.deleted)
	})

	t.Run("cleared assignee is skipped", func(t *testing.T) {
		tasks := newMockTaskService()
		rule, notifier := newFeasibilityFixture(tasks, newMockUserDirectory())

		rule.Handle(context.Background(), assigneeChangeEvents("t1", ""))

		assert.Empty(t, tasks.updates)
		assert.Empty(t, notifier.rules)
	})

	t.Run("non-manager assignee is a no-op", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.comments["t1"] = []asana.Story{{GID: "s1"}}
		tasks.attachments["t1"] = []asana.Attachment{{GID: "a1"}}
		users := newMockUserDirectory(asana.User{GID: "u9", Name: "Random Person"})
		rule, _ := newFeasibilityFixture(tasks, users)

		rule.Handle(context.Background(), assigneeChangeEvents("t1", "u9"))

		assert.Empty(t, tasks.updates)
	})

	t.Run("missing comment or attachment leaves the task alone", func(t *testing.T) {
		users := newMockUserDirectory(asana.User{GID: "u1", Name: "Lee"})

		t.Run("no comments", func(t *testing.T) {
			tasks := newMockTaskService()
			tasks.attachments["t1"] = []asana.Attachment{{GID: "a1"}}
			rule, notifier := newFeasibilityFixture(tasks, users)

			rule.Handle(context.Background(), assigneeChangeEvents("t1", "u1"))

			assert.Empty(t, tasks.updates)
			assert.Empty(t, notifier.rules)
		})

		t.Run("no attachments", func(t *testing.T) {
			tasks := newMockTaskService()
			tasks.comments["t1"] = []asana.Story{{GID: "s1"}}
			rule, notifier := newFeasibilityFixture(tasks, users)

			rule.Handle(context.Background(), assigneeChangeEvents("t1", "u1"))

			assert.Empty(t, tasks.updates)
			assert.Empty(t, notifier.rules)
		})
	})

	t.Run("unknown assignee gid is skipped", func(t *testing.T) {
		tasks := newMockTaskService()
		rule, _ := newFeasibilityFixture(tasks, newMockUserDirectory())

		rule.Handle(context.Background(), assigneeChangeEvents("t1", "ghost"))

		assert.Empty(t, tasks.updates)
	})
}
