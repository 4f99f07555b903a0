package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GetUser fetches one user by gid.
func (c *Client) GetUser(ctx context.Context, userGID string) (*User, error) {
	query := url.Values{"opt_fields": {"name,email"}}

	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+userGID, query, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userGID, err)
	}
	return &user, nil
}

// ListUsers lists every member of a workspace, following pagination so the
// directory used for owner matching is never truncated.
func (c *Client) ListUsers(ctx context.Context, workspaceGID string) ([]User, error) {
	query := url.Values{
		"workspace":  {workspaceGID},
		"opt_fields": {"name,email"},
	}

	var users []User
	err := c.doList(ctx, "/users", query, func(data json.RawMessage) error {
		var page []User
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		users = append(users, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users for workspace %s: %w", workspaceGID, err)
	}
	return users, nil
}
