// Package client talks to a running ruche management API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ruche-hive/ruche/internal/api"
	"github.com/ruche-hive/ruche/internal/audit"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/health"
	"github.com/ruche-hive/ruche/internal/node"
)

// DefaultURL is used when no server is configured.
const DefaultURL = "http://127.0.0.1:3000"

// EnvURL and EnvToken override the server address and bearer token.
const (
	EnvURL   = "RUCHE_URL"
	EnvToken = "RUCHE_TOKEN"
)

// Client is a management API client.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a client for baseURL. Provisioning pulls images and may take
// a while, so the timeout is generous.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// kindForStatus maps an API status back to an error kind so the CLI exits
// with a meaningful code.
func kindForStatus(status int) errors.Kind {
	switch {
	case status == http.StatusBadRequest:
		return errors.KindValidation
	case status == http.StatusNotFound:
		return errors.KindNotFound
	case status == http.StatusConflict:
		return errors.KindDirectoryAlreadyExists
	case status >= http.StatusInternalServerError:
		return errors.KindUpstreamFailure
	default:
		return errors.KindGeneral
	}
}

// do sends a request and decodes a 2xx JSON response into out. okStatus
// lists extra statuses whose body is decoded into out instead of being
// treated as an error.
func (c *Client) do(ctx context.Context, method, path string, body, out any, okStatus ...int) (int, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, errors.Wrap(errors.KindGeneral, fmt.Sprintf("cannot reach ruche at %s", c.BaseURL), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	accepted := resp.StatusCode >= 200 && resp.StatusCode < 300
	for _, s := range okStatus {
		if resp.StatusCode == s {
			accepted = true
		}
	}
	if !accepted {
		var apiErr api.ErrorResponse
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return resp.StatusCode, errors.New(kindForStatus(resp.StatusCode), msg)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func beePath(id int, suffix string) string {
	return fmt.Sprintf("/bee/%d%s", id, suffix)
}

// Ping returns the server's liveness report.
func (c *Client) Ping(ctx context.Context) (*api.HealthResponse, error) {
	var out api.HealthResponse
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create provisions a new node.
func (c *Client) Create(ctx context.Context) (*node.Info, error) {
	var out node.Info
	if _, err := c.do(ctx, http.MethodPost, "/bee", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one node.
func (c *Client) Get(ctx context.Context, id int) (*node.Info, error) {
	var out node.Info
	if _, err := c.do(ctx, http.MethodGet, beePath(id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every node sorted by id.
func (c *Client) List(ctx context.Context) ([]*node.Info, error) {
	var out []*node.Info
	if _, err := c.do(ctx, http.MethodGet, "/bees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logs returns a node's container output.
func (c *Client) Logs(ctx context.Context, id int) ([]string, error) {
	var out api.LogsResponse
	if _, err := c.do(ctx, http.MethodGet, beePath(id, "/logs"), nil, &out); err != nil {
		return nil, err
	}
	return out.Lines, nil
}

// Events returns a node's audit trail.
func (c *Client) Events(ctx context.Context, id int) ([]audit.Event, error) {
	var out []audit.Event
	if _, err := c.do(ctx, http.MethodGet, beePath(id, "/events"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks one node's container and bee API.
func (c *Client) Health(ctx context.Context, id int) (*health.CheckResult, error) {
	var out health.CheckResult
	if _, err := c.do(ctx, http.MethodGet, beePath(id, "/health"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start starts one node.
func (c *Client) Start(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodPost, beePath(id, "/start"), nil, nil)
	return err
}

// Stop stops one node.
func (c *Client) Stop(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodPost, beePath(id, "/stop"), nil, nil)
	return err
}

// Recreate recreates one node's container.
func (c *Client) Recreate(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodPost, beePath(id, "/recreate"), nil, nil)
	return err
}

// bulk runs a bulk operation. The per-node results are returned even when
// some failed; the error then summarizes the failures.
func (c *Client) bulk(ctx context.Context, path string, names []string) ([]api.BulkItem, error) {
	var body any
	if len(names) > 0 {
		body = api.BulkRequest{Names: names}
	}

	var out api.BulkResponse
	status, err := c.do(ctx, http.MethodPost, path, body, &out, http.StatusInternalServerError)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError {
		failed := 0
		for _, r := range out.Results {
			if !r.OK {
				failed++
			}
		}
		return out.Results, errors.New(errors.KindUpstreamFailure,
			fmt.Sprintf("%d of %d nodes failed", failed, len(out.Results)))
	}
	return out.Results, nil
}

// StartAll starts every node, or only names when given.
func (c *Client) StartAll(ctx context.Context, names ...string) ([]api.BulkItem, error) {
	return c.bulk(ctx, "/bees/start", names)
}

// StopAll stops every node, or only names when given.
func (c *Client) StopAll(ctx context.Context, names ...string) ([]api.BulkItem, error) {
	return c.bulk(ctx, "/bees/stop", names)
}

// RecreateAll recreates every node.
func (c *Client) RecreateAll(ctx context.Context) ([]api.BulkItem, error) {
	return c.bulk(ctx, "/bees/recreate", nil)
}

// RequestDeletion opens a deletion ticket.
func (c *Client) RequestDeletion(ctx context.Context, id int) (*api.DeletionRequestResponse, error) {
	var out api.DeletionRequestResponse
	if _, err := c.do(ctx, http.MethodDelete, beePath(id, "/req"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmDeletion destroys a node with an open ticket.
func (c *Client) ConfirmDeletion(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, beePath(id, ""), nil, nil)
	return err
}
