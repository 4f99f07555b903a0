package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// WebhookExists reports whether a webhook pointing at targetURL is already
// established for the given project. Paginates through every registration.
func (c *Client) WebhookExists(ctx context.Context, workspaceGID, projectGID, targetURL string) (bool, error) {
	query := url.Values{
		"workspace": {workspaceGID},
		"resource":  {projectGID},
	}

	found := false
	err := c.doList(ctx, "/webhooks", query, func(data json.RawMessage) error {
		var page []Webhook
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		for _, wh := range page {
			if wh.Target == targetURL && wh.Resource.GID == projectGID {
				found = true
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return found, nil
}

// CreateWebhook establishes a webhook delivering the given filtered events
// for a project to targetURL. Asana performs the X-Hook-Secret handshake
// against the target during this call, so the server must already be up.
func (c *Client) CreateWebhook(ctx context.Context, projectGID, targetURL string, filters []WebhookFilter) (*Webhook, error) {
	body := map[string]interface{}{
		"resource": projectGID,
		"target":   targetURL,
		"filters":  filters,
	}

	var webhook Webhook
	if err := c.do(ctx, http.MethodPost, "/webhooks", nil, body, &webhook); err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return &webhook, nil
}
