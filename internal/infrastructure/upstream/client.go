// Package upstream is the typed client for the remote inventory backend.
// All wire-shape tolerance (camelCase/snake_case variants, stringly-typed
// numbers) is absorbed here; the rest of the service only sees canonical
// shapes.
package upstream

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

	"stockdesk/internal/core/apperror"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the inventory backend. Requests carry the caller's
// context; there is no automatic retry.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a backend client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// get issues a GET request and decodes the envelope data into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// send issues a mutating request with a JSON body.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apperror.NewUpstream("", err).WithDetail("path", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewUpstream("", err).WithDetail("path", path)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return apperror.NewUpstream("", fmt.Errorf("decode response: %w", err)).
				WithDetail("path", path).
				WithDetail("status", resp.StatusCode)
		}
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperror.NewNotFound("resource", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return apperror.NewUpstream(env.Message, nil).
			WithDetail("path", path).
			WithDetail("status", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperror.NewUpstream("", fmt.Errorf("decode response data: %w", err)).
				WithDetail("path", path)
		}
	}
	return nil
}
