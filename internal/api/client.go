package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cafeteria/internal/logger"
)

const maxErrorBody = 64 << 10

// Client talks to the cafeteria REST backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logger.Logger

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// New creates a client; every request is bounded by timeout
func New(baseURL string, timeout time.Duration, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}, nil
}

// SetToken sets the bearer token attached to authenticated calls
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnUnauthorized registers fn to run whenever the backend answers 401.
// The token is already cleared when fn runs.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// request describes one call; body is JSON-encoded unless raw is set
type request struct {
	method      string
	path        string
	query       url.Values
	body        interface{}
	raw         io.Reader
	contentType string
	public      bool
}

// Download is a binary response written to the caller's writer
type Download struct {
	Filename    string
	ContentType string
	Size        int64
}

func (c *Client) doJSON(ctx context.Context, req request, out interface{}) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, req request) ([]byte, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", req.method, req.path, err)
	}
	return body, nil
}

func (c *Client) doDownload(ctx context.Context, req request, w io.Writer) (Download, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return Download{}, err
	}
	defer resp.Body.Close()

	dl := Download{ContentType: resp.Header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		dl.Filename = params["filename"]
	}

	n, err := io.Copy(w, resp.Body)
	dl.Size = n
	if err != nil {
		return dl, fmt.Errorf("failed to download %s: %w", req.path, err)
	}
	return dl, nil
}

// send performs the call and returns the response only for 2xx statuses
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	requestID := logger.GenerateRequestID()
	token := c.Token()
	if !req.public && token == "" {
		return nil, ErrNotLoggedIn
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	contentType := req.contentType
	switch {
	case req.raw != nil:
		body = req.raw
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	c.logger.Debug("request_started", fmt.Sprintf("%s %s", req.method, req.path), requestID, map[string]interface{}{
		"method": req.method,
		"path":   req.path,
	})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("request_failed", fmt.Sprintf("%s %s failed", req.method, req.path), requestID, err, nil)
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}

	c.logger.Debug("request_completed", fmt.Sprintf("%s %s - %d", req.method, req.path, resp.StatusCode), requestID, map[string]interface{}{
		"method":      req.method,
		"path":        req.path,
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(requestID)
		return nil, ErrUnauthorized
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := newAPIError(resp.StatusCode, data)
	c.logger.Warn("request_rejected", apiErr.Error(), requestID, map[string]interface{}{
		"method":      req.method,
		"path":        req.path,
		"status_code": resp.StatusCode,
	})
	return nil, apiErr
}

func (c *Client) unauthorized(requestID string) {
	c.mu.Lock()
	c.token = ""
	hook := c.onUnauthorized
	c.mu.Unlock()

	c.logger.Info("session_expired", "Backend rejected the token", requestID, nil)
	if hook != nil {
		hook()
	}
}
