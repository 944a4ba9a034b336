// Package client is the Go client for the strata HTTP API. The CLI is built
// on it; independent invocations coordinate only through the server, which is
// what makes lease-gated completion meaningful across processes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/strata/internal/errors"
	"github.com/felixgeelhaar/strata/internal/plan"
	"github.com/felixgeelhaar/strata/pkg/strata/api"
)

// Client talks to a running strata server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeClientDecode, "encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeClientTransport, "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeClientTransport, fmt.Sprintf("request %s %s", method, path), err).
			WithSuggestion("Is the server running? Start it with 'strata serve'").
			WithSuggestion("Check --server or STRATA_SERVER_URL")
	}
	defer res.Body.Close()

	var env api.Envelope
	if into != nil {
		env.Data = into
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return errors.Wrap(errors.ErrCodeClientDecode,
			fmt.Sprintf("decode response (%s)", res.Status), err)
	}

	if !env.Success {
		if env.Error == nil {
			return errors.New(errors.ErrCodeClientDecode, fmt.Sprintf("server error (%s)", res.Status))
		}
		// Rehydrate the server-side error so callers and the exit code
		// mapping see the original kind.
		serr := errors.New(errors.ErrorCode(env.Error.Code), env.Error.Message)
		serr.Suggestions = env.Error.Suggestions
		return serr
	}
	return nil
}

// CreatePlan creates a plan and returns its id.
func (c *Client) CreatePlan(ctx context.Context, goal, notes string) (int64, error) {
	var out api.CreatePlanResponse
	err := c.do(ctx, http.MethodPost, "/api/plans", api.CreatePlanRequest{Goal: goal, Notes: notes}, &out)
	return out.ID, err
}

// GetPlan fetches a full plan snapshot.
func (c *Client) GetPlan(ctx context.Context, id int64) (plan.Plan, error) {
	var out plan.Plan
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/plans/%d", id), nil, &out)
	return out, err
}

// ListPlans fetches summaries of every plan.
func (c *Client) ListPlans(ctx context.Context) ([]plan.PlanSummary, error) {
	var out api.ListPlansResponse
	err := c.do(ctx, http.MethodGet, "/api/plans", nil, &out)
	return out.Plans, err
}

// DeletePlan deletes a plan.
func (c *Client) DeletePlan(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/plans/%d", id), nil, nil)
}

// AddTask appends a task under parentPath and returns the new task's path.
func (c *Client) AddTask(ctx context.Context, id int64, parentPath, description, level, notes string) (string, error) {
	var out api.AddTaskResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/tasks", id), api.AddTaskRequest{
		ParentPath:  parentPath,
		Description: description,
		Level:       level,
		Notes:       notes,
	}, &out)
	return out.Path, err
}

// CompleteTask completes the task at path.
func (c *Client) CompleteTask(ctx context.Context, id int64, path, lease, summary string, force bool) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/tasks/complete", id), api.CompleteTaskRequest{
		Path:    path,
		Lease:   lease,
		Summary: summary,
		Force:   force,
	}, nil)
}

// UncompleteTask reopens the task at path.
func (c *Client) UncompleteTask(ctx context.Context, id int64, path string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/tasks/uncomplete", id), api.TaskPathRequest{Path: path}, nil)
}

// RemoveTask removes the task at path and returns the removed subtree.
func (c *Client) RemoveTask(ctx context.Context, id int64, path string) (*plan.Task, error) {
	var out api.RemoveTaskResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/tasks/remove", id), api.TaskPathRequest{Path: path}, &out)
	return out.Removed, err
}

// ChangeLevel reassigns the task's abstraction level.
func (c *Client) ChangeLevel(ctx context.Context, id int64, path, level string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/tasks/level", id), api.ChangeLevelRequest{
		Path:  path,
		Level: level,
	}, nil)
}

// GetNotes fetches the task's notes.
func (c *Client) GetNotes(ctx context.Context, id int64, path string) (string, error) {
	var out api.NotesResponse
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/api/plans/%d/tasks/notes?path=%s", id, url.QueryEscape(path)), nil, &out)
	return out.Notes, err
}

// SetNotes replaces the task's notes.
func (c *Client) SetNotes(ctx context.Context, id int64, path, notes string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/plans/%d/tasks/notes", id), api.SetNotesRequest{
		Path:  path,
		Notes: notes,
	}, nil)
}

// DeleteNotes clears the task's notes.
func (c *Client) DeleteNotes(ctx context.Context, id int64, path string) error {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/api/plans/%d/tasks/notes?path=%s", id, url.QueryEscape(path)), nil, nil)
}

// MoveTo repositions the plan's current focus.
func (c *Client) MoveTo(ctx context.Context, id int64, path string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/move", id), api.MoveRequest{Path: path}, nil)
}

// GetCurrent fetches the plan's current focus.
func (c *Client) GetCurrent(ctx context.Context, id int64) (plan.Current, error) {
	var out plan.Current
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/plans/%d/current", id), nil, &out)
	return out, err
}

// GetDistilledContext fetches the compact working view of the plan.
func (c *Client) GetDistilledContext(ctx context.Context, id int64) (plan.DistilledContext, error) {
	var out plan.DistilledContext
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/plans/%d/context", id), nil, &out)
	return out, err
}

// GenerateLease issues a completion lease for the task at path.
func (c *Client) GenerateLease(ctx context.Context, id int64, path string) (api.LeaseResponse, error) {
	var out api.LeaseResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/plans/%d/lease", id), api.LeaseRequest{Path: path}, &out)
	return out, err
}

// GetGuide fetches the usage guide; mode is "cli" or "mcp".
func (c *Client) GetGuide(ctx context.Context, mode string) (string, error) {
	var out api.GuideResponse
	err := c.do(ctx, http.MethodGet, "/api/guide?mode="+url.QueryEscape(mode), nil, &out)
	return out.Guide, err
}
