package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Client wraps net/http.Client with convenience methods for JSON APIs.
type Client struct {
	http *http.Client
}

// Response wraps the status code and body bytes of a completed request.
// The underlying http.Response body is already closed; callers read from
// Body instead.
type Response struct {
	StatusCode int
	Body       []byte
}

// New creates a Client with a 30-second timeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: 30 * time.Second}}
}

// NewWithTimeout creates a Client with the given timeout in seconds.
// Falls back to 30s if the value is zero or negative.
func NewWithTimeout(timeoutSeconds float64) *Client {
	if timeoutSeconds <= 0 {
		return New()
	}
	return &Client{http: &http.Client{Timeout: time.Duration(timeoutSeconds * float64(time.Second))}}
}

// RequestOption configures an http.Request before it is sent.
type RequestOption func(*http.Request)

// DoCtx sends an HTTP request, applies options, reads the full body, and
// returns a Response. A non-nil error indicates a network-level failure or
// context cancellation; HTTP error statuses come back in StatusCode.
func (c *Client) DoCtx(ctx context.Context, method, rawURL string, body io.Reader, opts ...RequestOption) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// GetJSONCtx issues a GET and decodes a 200 response body into out. The
// raw Response is returned either way so callers can inspect non-200
// statuses.
func (c *Client) GetJSONCtx(ctx context.Context, rawURL string, out any, opts ...RequestOption) (*Response, error) {
	resp, err := c.DoCtx(ctx, http.MethodGet, rawURL, nil, opts...)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, err
		}
	}
	return resp, nil
}
