package rules

import (
	"context"
	"testing"

	"github.com/garyjia/asana-automation/internal/asana"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBusinessValueFixture(tasks *mockTaskService) (*BusinessValue, *mockNotifier) {
	notifier := &mockNotifier{}
	cfg := Config{ProjectGID: "proj1"}
	return NewBusinessValue(tasks, notifier, cfg, zap.NewNop()), notifier
}

func TestBusinessValueUpdate(t *testing.T) {
	t.Run("writes the value into the matched task's field", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.projectTasks = []asana.TaskRef{
			{GID: "t1", Name: "Globex"},
			{GID: "t2", Name: "Acme Corp"},
		}
		tasks.tasks["t2"] = &asana.Task{
			GID:          "t2",
			Name:         "Acme Corp",
			CustomFields: []asana.CustomField{{GID: "cf-bv", Name: "Business Value"}},
		}
		bv, notifier := newBusinessValueFixture(tasks)

		result := bv.Update(context.Background(), "Acme Corp", 42.5)

		assert.Equal(t, "success", result.Status)
		require.Len(t, tasks.updates, 1)
		assert.Equal(t, "t2", tasks.updates[0].taskGID)
		assert.Equal(t, map[string]interface{}{
			"custom_fields": map[string]interface{}{"cf-bv": 42.5},
		}, tasks.updates[0].fields)
		require.Len(t, notifier.rules, 1)
	})

	t.Run("company name must match a task exactly", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.projectTasks = []asana.TaskRef{{GID: "t1", Name: "Acme Corp"}}
		bv, _ := newBusinessValueFixture(tasks)

		result := bv.Update(context.Background(), "Acme", 10)

		assert.Equal(t, "error", result.Status)
		assert.Empty(t, tasks.updates)
	})

	t.Run("missing business value field is an error result", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.projectTasks = []asana.TaskRef{{GID: "t1", Name: "Acme Corp"}}
		tasks.tasks["t1"] = &asana.Task{GID: "t1", Name: "Acme Corp"}
		bv, _ := newBusinessValueFixture(tasks)

		result := bv.Update(context.Background(), "Acme Corp", 10)

		assert.Equal(t, "error", result.Status)
		assert.Empty(t, tasks.updates)
	})

	t.Run("task list failure is an error result", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.listErr = errMock
		bv, notifier := newBusinessValueFixture(tasks)

		result := bv.Update(context.Background(), "Acme Corp", 10)

		assert.Equal(t, "error", result.Status)
		assert.Empty(t, notifier.rules)
	})

	t.Run("update failure is an error result", func(t *testing.T) {
		tasks := newMockTaskService()
		tasks.projectTasks = []asana.TaskRef{{GID: "t1", Name: "Acme Corp"}}
		tasks.tasks["t1"] = &asana.Task{
			GID:          "t1",
			CustomFields: []asana.CustomField{{GID: "cf-bv", Name: "Business Value"}},
		}
		tasks.updateErr = errMock
		bv, notifier := newBusinessValueFixture(tasks)

		result := bv.Update(context.Background(), "Acme Corp", 10)

		assert.Equal(t, "error", result.Status)
		assert.Empty(t, notifier.rules)
	})
}
