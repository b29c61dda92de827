package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TASKSYNC_HTTP_TIMEOUT"
	apiTokenEnvKey     = "TASKSYNC_API_TOKEN"
)

// Client is the only point of contact with the remote backend. Calls are
// safe to retry: the processor may repeat a create across restarts if a
// prior attempt's local commit was interrupted.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new backend client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
	}
}

// Ping checks whether the backend is reachable. The connectivity monitor
// polls it to detect online/offline transitions.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]RemoteProject, error) {
	var resp []RemoteProject
	err := c.do(ctx, http.MethodGet, "/v1/projects", nil, &resp)
	return resp, err
}

func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) (RemoteProject, error) {
	var resp RemoteProject
	err := c.do(ctx, http.MethodPost, "/v1/projects", req, &resp)
	return resp, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListContexts(ctx context.Context) ([]RemoteContext, error) {
	var resp []RemoteContext
	err := c.do(ctx, http.MethodGet, "/v1/contexts", nil, &resp)
	return resp, err
}

func (c *Client) CreateContext(ctx context.Context, req ContextCreateRequest) (RemoteContext, error) {
	var resp RemoteContext
	err := c.do(ctx, http.MethodPost, "/v1/contexts", req, &resp)
	return resp, err
}

func (c *Client) DeleteContext(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/contexts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]RemoteTask, error) {
	var resp []RemoteTask
	err := c.do(ctx, http.MethodGet, "/v1/tasks", nil, &resp)
	return resp, err
}

func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) (RemoteTask, error) {
	var resp RemoteTask
	err := c.do(ctx, http.MethodPost, "/v1/tasks", req, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskUpdateRequest) (RemoteTask, error) {
	var resp RemoteTask
	err := c.do(ctx, http.MethodPatch, "/v1/tasks/"+url.PathEscape(id), req, &resp)
	return resp, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListAssociations(ctx context.Context) ([]RemoteAssociation, error) {
	var resp []RemoteAssociation
	err := c.do(ctx, http.MethodGet, "/v1/associations", nil, &resp)
	return resp, err
}

func (c *Client) CreateAssociation(ctx context.Context, req AssociationCreateRequest) (RemoteAssociation, error) {
	var resp RemoteAssociation
	err := c.do(ctx, http.MethodPost, "/v1/associations", req, &resp)
	return resp, err
}

func (c *Client) DeleteAssociation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/associations/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &RemoteError{Message: "build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return &RemoteError{Status: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
	}
	return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
