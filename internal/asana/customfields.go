package asana

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetEnumOptions fetches the enum options of a custom field and returns the
// id/name mapping in both directions. Fetched fresh per evaluation; the
// handlers deliberately carry no option cache.
func (c *Client) GetEnumOptions(ctx context.Context, fieldGID string) (*EnumOptions, error) {
	query := url.Values{"opt_fields": {"enum_options.name"}}

	var field struct {
		EnumOptionsList []EnumOption `json:"enum_options"`
	}
	if err := c.do(ctx, http.MethodGet, "/custom_fields/"+fieldGID, query, nil, &field); err != nil {
		return nil, fmt.Errorf("failed to fetch enum options for field %s: %w", fieldGID, err)
	}

	opts := &EnumOptions{
		ByID:   make(map[string]string, len(field.EnumOptionsList)),
		ByName: make(map[string]string, len(field.EnumOptionsList)),
	}
	for _, opt := range field.EnumOptionsList {
		opts.ByID[opt.GID] = opt.Name
		opts.ByName[opt.Name] = opt.GID
	}
	return opts, nil
}
