// Package shortcut is a small client for the Shortcut REST API (v3).
package shortcut

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/shortcut-cli/sc/pkg/logger"
)

// DefaultBaseURL is the public Shortcut API endpoint.
const DefaultBaseURL = "https://api.app.shortcut.com/api/v3"

const tokenHeader = "Shortcut-Token"

// Client represents a Shortcut API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	lggr       logger.Logger

	retryAttempts uint
	retryDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets how many times a retryable request is attempted and the base delay between
// attempts. Attempts below 1 are treated as 1.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = max(attempts, 1)
		c.retryDelay = delay
	}
}

// WithLogger sets the logger used for retry and request diagnostics.
func WithLogger(lggr logger.Logger) Option {
	return func(c *Client) {
		c.lggr = lggr
	}
}

// NewClient creates a new Shortcut client with the provided API token
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("shortcut API token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		lggr:          logger.Nop(),
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: API returned status %d", e.Method, e.Path, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: API returned status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

// Do sends body (JSON encoded, nil for none) to path and decodes the JSON response into a
// generic value tree. Empty responses decode to nil.
func (c *Client) Do(ctx context.Context, method, path string, body map[string]any) (any, error) {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response from %s %s: %w", method, path, err)
	}

	return out, nil
}

// get fetches path and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	raw, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response from GET %s: %w", path, err)
	}

	return nil
}

// send performs the request, retrying rate-limited responses for every method and transport or
// server errors for GET only, since other methods may already have taken effect.
func (c *Client) send(ctx context.Context, method, path string, body map[string]any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	return retry.DoWithData(
		func() ([]byte, error) {
			return c.sendOnce(ctx, method, path, payload)
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retryable(method, err)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			c.lggr.Warnw("Request failed. Retrying...", "method", method, "path", path, "attempt", attempt+1, "error", err)
		}),
	)
}

func (c *Client) sendOnce(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.lggr.Debugw("Sending request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func retryable(method string, err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return true
		}

		return method == http.MethodGet && apiErr.StatusCode >= 500
	}

	return method == http.MethodGet && !errors.Is(err, context.Canceled)
}
