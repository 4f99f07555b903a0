package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, PAT: "test-pat"}, zap.NewNop())
}

func writePage(t *testing.T, w http.ResponseWriter, data interface{}, nextOffset string) {
	t.Helper()
	body := map[string]interface{}{"data": data}
	if nextOffset != "" {
		body["next_page"] = map[string]string{"offset": nextOffset}
	}
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestListUsersPagination(t *testing.T) {
	t.Run("follows next_page until the directory is complete", func(t *testing.T) {
		var requests int
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			require.Equal(t, "/users", r.URL.Path)
			require.Equal(t, "ws1", r.URL.Query().Get("workspace"))

			switch r.URL.Query().Get("offset") {
			case "":
				users := make([]User, 100)
				for i := range users {
					users[i] = User{GID: fmt.Sprintf("u%d", i), Name: fmt.Sprintf("User %d", i)}
				}
				writePage(t, w, users, "page2")
			case "page2":
				users := make([]User, 50)
				for i := range users {
					users[i] = User{GID: fmt.Sprintf("u%d", 100+i), Name: fmt.Sprintf("User %d", 100+i)}
				}
				writePage(t, w, users, "")
			default:
				t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			}
		}))

		users, err := client.ListUsers(context.Background(), "ws1")

		require.NoError(t, err)
		assert.Len(t, users, 150)
		assert.Equal(t, 2, requests)
		assert.Equal(t, "u149", users[149].GID)
	})

	t.Run("single page without cursor", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writePage(t, w, []User{{GID: "u1", Name: "John Doe"}}, "")
		}))

		users, err := client.ListUsers(context.Background(), "ws1")

		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestListProjectTasksPagination(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/proj1/tasks", r.URL.Path)

		if r.URL.Query().Get("offset") == "" {
			writePage(t, w, []TaskRef{{GID: "t1", Name: "Acme Corp"}}, "page2")
			return
		}
		writePage(t, w, []TaskRef{{GID: "t2", Name: "Globex"}}, "")
	}))

	tasks, err := client.ListProjectTasks(context.Background(), "proj1")

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Globex", tasks[1].Name)
}

func TestWebhookExistsPagination(t *testing.T) {
	// The matching registration sits on the second page.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/webhooks", r.URL.Path)

		if r.URL.Query().Get("offset") == "" {
			first := Webhook{GID: "wh1", Target: "https://other.example.com/hook"}
			first.Resource.GID = "proj1"
			writePage(t, w, []Webhook{first}, "page2")
			return
		}
		second := Webhook{GID: "wh2", Target: "https://svc.example.com/asana-webhook"}
		second.Resource.GID = "proj1"
		writePage(t, w, []Webhook{second}, "")
	}))

	exists, err := client.WebhookExists(context.Background(), "ws1", "proj1", "https://svc.example.com/asana-webhook")

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetTaskNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetTask(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}
