package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// taskOptFields covers everything the rule handlers gate on: current status
// option, custom fields with rendered values, description and due date.
const taskOptFields = "name,notes,due_on,custom_type_status_option.name," +
	"custom_fields.name,custom_fields.display_value"

// GetTask fetches the authoritative snapshot of one task.
func (c *Client) GetTask(ctx context.Context, taskGID string) (*Task, error) {
	query := url.Values{"opt_fields": {taskOptFields}}

	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskGID, query, nil, &task); err != nil {
		return nil, fmt.Errorf("failed to fetch task %s: %w", taskGID, err)
	}
	return &task, nil
}

// UpdateTask applies a partial field update to a task. The fields map is sent
// as-is under the data envelope, so callers control exact payload shape
// (nil values clear fields).
func (c *Client) UpdateTask(ctx context.Context, taskGID string, fields map[string]interface{}) error {
	if err := c.do(ctx, http.MethodPut, "/tasks/"+taskGID, nil, fields, nil); err != nil {
		return fmt.Errorf("failed to update task %s: %w", taskGID, err)
	}
	return nil
}

// DeleteTask moves a task to the trash. Asana has no permanent delete; the
// rule layer approximates one with the sentinel rename.
func (c *Client) DeleteTask(ctx context.Context, taskGID string) error {
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+taskGID, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", taskGID, err)
	}
	return nil
}

// GetComments returns the comment stories of a task (the activity feed
// filtered to resource_subtype "comment_added").
func (c *Client) GetComments(ctx context.Context, taskGID string) ([]Story, error) {
	query := url.Values{"opt_fields": {"resource_subtype,text"}}

	var stories []Story
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskGID+"/stories", query, nil, &stories); err != nil {
		return nil, fmt.Errorf("failed to fetch stories for task %s: %w", taskGID, err)
	}

	comments := make([]Story, 0, len(stories))
	for _, s := range stories {
		if s.ResourceSubtype == "comment_added" {
			comments = append(comments, s)
		}
	}
	return comments, nil
}

// GetAttachments returns the attachments of a task.
func (c *Client) GetAttachments(ctx context.Context, taskGID string) ([]Attachment, error) {
	query := url.Values{"opt_fields": {"name"}}

	var attachments []Attachment
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskGID+"/attachments", query, nil, &attachments); err != nil {
		return nil, fmt.Errorf("failed to fetch attachments for task %s: %w", taskGID, err)
	}
	return attachments, nil
}

// ListProjectTasks lists all tasks of a project with their names, following
// pagination across large projects.
func (c *Client) ListProjectTasks(ctx context.Context, projectGID string) ([]TaskRef, error) {
	query := url.Values{"opt_fields": {"name"}}

	var tasks []TaskRef
	err := c.doList(ctx, "/projects/"+projectGID+"/tasks", query, func(data json.RawMessage) error {
		var page []TaskRef
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		tasks = append(tasks, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for project %s: %w", projectGID, err)
	}
	return tasks, nil
}
