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
)

// Client is a thin HTTP client for the admin control surface.
type Client struct {
	baseURL string
	opts    *options
}

// New creates a Client pointed at baseURL (e.g. "http://localhost:8081").
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Client{baseURL: baseURL, opts: o}
}

// Task mirrors the JSON shape of cppq.Task as served by the admin API.
type Task struct {
	UUID         string `json:"UUID"`
	Type         string `json:"Type"`
	Payload      string `json:"Payload"`
	State        int    `json:"State"` // numeric cppq.State value
	MaxRetry     uint64 `json:"MaxRetry"`
	Retried      uint64 `json:"Retried"`
	DequeuedAtMs int64  `json:"DequeuedAtMs"`
	Schedule     *int64 `json:"Schedule"`
	Cron         string `json:"Cron"`
	Result       string `json:"Result"`
}

// EnqueueRequest is the body of a convenience-enqueue call.
type EnqueueRequest struct {
	Type        string     `json:"type"`
	Payload     string     `json:"payload"`
	MaxRetry    uint64     `json:"max_retry"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Cron        string     `json:"cron,omitempty"`
}

// QueueStats is one entry of the GET /admin/queues response.
type QueueStats struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Paused   bool   `json:"paused"`
	Depth    struct {
		Pending   int64 `json:"pending"`
		Scheduled int64 `json:"scheduled"`
		Active    int64 `json:"active"`
		Completed int64 `json:"completed"`
		Failed    int64 `json:"failed"`
	} `json:"depth"`
}

// Enqueue submits a new task to queue.
func (c *Client) Enqueue(ctx context.Context, queue string, req EnqueueRequest) (*Task, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var task Task
	if err := c.do(ctx, http.MethodPost, "/admin/tasks/"+queue, bytes.NewReader(body), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask reads back a task's hash record.
func (c *Client) GetTask(ctx context.Context, queue, uuid string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/admin/tasks/"+queue+"/"+uuid, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Pause pauses dispatch for queue.
func (c *Client) Pause(ctx context.Context, queue string) error {
	return c.do(ctx, http.MethodPost, "/admin/queues/"+queue+"/pause", nil, nil)
}

// Unpause resumes dispatch for queue.
func (c *Client) Unpause(ctx context.Context, queue string) error {
	return c.do(ctx, http.MethodPost, "/admin/queues/"+queue+"/resume", nil, nil)
}

// QueueStats returns the registered queues and their current depths.
func (c *Client) QueueStats(ctx context.Context) ([]QueueStats, error) {
	var resp struct {
		Queues []QueueStats `json:"queues"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/queues", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Queues, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.apiKey != "" {
		req.Header.Set("X-API-Key", c.opts.apiKey)
	}
	for k, v := range c.opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("%s %s: %d %s: %s", method, path, resp.StatusCode, errBody.Error, errBody.Message)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
