// Package api is a client for the music server's HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tessro/mewzy/internal/auth"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
)

const (
	// Retry configuration for transient errors
	defaultMaxRetries = 3
	baseRetryWait     = 500 * time.Millisecond
)

// Client is a music server API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      auth.Credentials
	maxRetries int
	retryWait  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxRetries sets how often transient failures are retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryWait sets the initial backoff between retries.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// New creates a client for the server at baseURL. creds may be nil for a
// guest client.
func New(baseURL string, creds auth.Credentials, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		maxRetries: defaultMaxRetries,
		retryWait:  baseRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether requests will carry a bearer token.
func (c *Client) HasToken() bool {
	return c.bearer() != ""
}

func (c *Client) bearer() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Bearer()
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, authRequired bool, result any) error {
	return c.request(ctx, http.MethodGet, path, authRequired, nil, result)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, authRequired bool, body, result any) error {
	return c.request(ctx, http.MethodPost, path, authRequired, body, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, authRequired bool) error {
	return c.request(ctx, http.MethodDelete, path, authRequired, nil, nil)
}

func (c *Client) request(ctx context.Context, method, path string, authRequired bool, body, result any) error {
	token := c.bearer()
	if authRequired && token == "" {
		return mewzyerrors.ErrFeatureUnavailable
	}

	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	slog.Debug("api request", "method", method, "url", fullURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := c.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			slog.Debug("api retry", "attempt", attempt, "max", c.maxRetries, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", mewzyerrors.ErrTimeout, ctx.Err())
			}
			lastErr = fmt.Errorf("%w: %w", mewzyerrors.ErrNetworkError, err)
			continue // Retry on network error
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		slog.Debug("api response", "status", resp.StatusCode, "url", fullURL)

		if resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			if token == "" {
				return mewzyerrors.ErrFeatureUnavailable
			}
			if c.creds != nil {
				c.creds.Invalidate()
			}
			return fmt.Errorf("%s %s: %w", method, path, mewzyerrors.ErrUnauthorized)
		}

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 {
			lastErr = newAPIError(resp.StatusCode, respBody)
			continue
		}

		// Don't retry other 4xx errors
		if resp.StatusCode >= 400 {
			return newAPIError(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// APIError represents an error response from the server.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// IsNotFound checks if an error is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// BuildURL builds a URL with query parameters.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}

	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
