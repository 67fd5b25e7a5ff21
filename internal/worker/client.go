// Package worker provides the HTTP client through which the scheduler
// talks to a remote worker agent: capacity snapshots, health probes, and
// session creation. The wire protocol is the worker agent's JSON API
// (GET /status, GET /health, POST /session); everything the scheduler core
// needs from a worker goes through this client.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"evalgo.org/gridium/models"
)

// DefaultTimeout bounds a single worker API call when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 30 * time.Second

// Client talks to one worker agent over HTTP. It implements
// scheduler.Worker.
//
// Thread-safe: the underlying http.Client handles concurrent requests, and
// the client itself holds no mutable state.
type Client struct {
	id         string
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// New creates a worker client. baseURL is the worker agent's API root
// (e.g. http://10.0.0.7:4444). authToken, when non-empty, is sent as a
// Bearer token on every request.
func New(id, baseURL, authToken string) *Client {
	return &Client{
		id:         id,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// ID returns the worker's identifier as configured.
func (c *Client) ID() string {
	return c.id
}

// BaseURL returns the worker agent's API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status fetches the worker's capacity snapshot from GET /status.
func (c *Client) Status(ctx context.Context) (*models.WorkerStatus, error) {
	var status models.WorkerStatus
	if err := c.do(ctx, http.MethodGet, "/status", nil, &status); err != nil {
		return nil, fmt.Errorf("fetching status of worker %s: %w", c.id, err)
	}
	if status.ID == "" {
		status.ID = c.id
	}
	return &status, nil
}

// HealthCheck probes GET /health. Transport failures and non-2xx responses
// are reported as Alive=false with the problem as the message; this method
// never returns an error.
func (c *Client) HealthCheck(ctx context.Context) models.HealthResult {
	var result models.HealthResult
	if err := c.do(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return models.HealthResult{Alive: false, Message: err.Error()}
	}
	if result.Message == "" && result.Alive {
		result.Message = "ok"
	}
	return result
}

// NewSession asks the worker to start a session for the requested
// capabilities via POST /session. A 2xx response without a session body is
// treated as a creation failure by the caller (the scheduler slot), so the
// decoded session is returned as-is.
func (c *Client) NewSession(ctx context.Context, caps models.Capabilities) (*models.Session, error) {
	payload := map[string]interface{}{"capabilities": caps}

	var session models.Session
	if err := c.do(ctx, http.MethodPost, "/session", payload, &session); err != nil {
		return nil, fmt.Errorf("creating session on worker %s: %w", c.id, err)
	}
	if session.ID == "" {
		// The worker answered but handed back nothing usable.
		return nil, nil
	}
	if session.WorkerID == "" {
		session.WorkerID = c.id
	}
	return &session, nil
}

// do performs one JSON request/response round trip against the worker API.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("worker API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
