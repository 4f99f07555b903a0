package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Asana REST API root.
const DefaultBaseURL = "https://app.asana.com/api/1.0"

// ErrNotFound is returned when the API answers 404 for a lookup.
var ErrNotFound = errors.New("asana: resource not found")

// Config holds Asana client configuration.
type Config struct {
	BaseURL string
	PAT     string        // personal access token
	Timeout time.Duration // per-request bound, applied to every call
}

// Client is a thin request/response wrapper around the Asana REST API. It is
// stateless per operation; no connection or transaction spans multiple tasks.
type Client struct {
	baseURL    string
	pat        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Asana API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		pat:        cfg.PAT,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// envelope is the {"data": ...} wrapper on every Asana response. List
// endpoints additionally carry a next_page cursor when more results exist.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	NextPage *pageCursor     `json:"next_page"`
}

type pageCursor struct {
	Offset string `json:"offset"`
}

// listPageSize is the page size requested from list endpoints.
const listPageSize = "100"

// do performs one API call and decodes the data envelope into out (out may
// be nil when the response body is irrelevant).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	env, err := c.doEnvelope(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode data from %s: %w", path, err)
	}
	return nil
}

// doList performs a paginated GET over a list endpoint, handing every page's
// data array to collect and following the next_page cursor until the last
// page. The response is truncated at the server's page size otherwise.
func (c *Client) doList(ctx context.Context, path string, query url.Values, collect func(json.RawMessage) error) error {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("limit", listPageSize)

	for {
		env, err := c.doEnvelope(ctx, http.MethodGet, path, q, nil)
		if err != nil {
			return err
		}
		if err := collect(env.Data); err != nil {
			return fmt.Errorf("failed to decode page from %s: %w", path, err)
		}
		if env.NextPage == nil || env.NextPage.Offset == "" {
			return nil
		}
		q.Set("offset", env.NextPage.Offset)
	}
}

func (c *Client) doEnvelope(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(map[string]interface{}{"data": body})
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.pat)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Asana API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return &env, nil
}
