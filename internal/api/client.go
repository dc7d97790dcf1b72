// Package api is the HTTP/JSON client for the shortener backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikhailRaia/url-shortener-client/internal/logger"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
)

const (
	// MaxResponseSize caps how much of a reply body is read (1MB).
	MaxResponseSize = 1 << 20

	RequestIDHeader = "X-Request-ID"
)

// ErrEmptyShortCode is returned by DeleteURL for an empty code.
var ErrEmptyShortCode = errors.New("short code is empty")

// Error is a failure the backend reported with a non-2xx status.
// Message is the "error" field of the reply and may be empty.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// TransportError is a failure to reach the backend or to decode its reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to the backend API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    *time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no timeout.
// The http.Client given to WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = &d
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: logger.Transport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout != nil {
		hc := *c.httpClient
		hc.Timeout = *c.timeout
		c.httpClient = &hc
	}

	return c, nil
}

// Shorten asks the backend to create a short URL for rawURL.
func (c *Client) Shorten(ctx context.Context, rawURL string) (model.ShortenResult, error) {
	const op = "api.Shorten"

	body, err := json.Marshal(model.ShortenRequest{URL: rawURL})
	if err != nil {
		return model.ShortenResult{}, &TransportError{Op: op, Err: err}
	}

	var result model.ShortenResult
	if err := c.do(ctx, op, http.MethodPost, "/api/shorten", body, &result); err != nil {
		return model.ShortenResult{}, err
	}
	return result, nil
}

// ListURLs returns every shortened URL known to the backend.
func (c *Client) ListURLs(ctx context.Context) ([]model.URLRecord, error) {
	const op = "api.ListURLs"

	var records []model.URLRecord
	if err := c.do(ctx, op, http.MethodGet, "/api/urls", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteURL removes the URL identified by code. The success body is ignored.
func (c *Client) DeleteURL(ctx context.Context, code string) error {
	const op = "api.DeleteURL"

	if code == "" {
		return ErrEmptyShortCode
	}
	return c.do(ctx, op, http.MethodDelete, "/api/urls/"+url.PathEscape(code), nil, nil)
}

// Health queries the backend health endpoint.
func (c *Client) Health(ctx context.Context) (model.HealthStatus, error) {
	const op = "api.Health"

	var status model.HealthStatus
	if err := c.do(ctx, op, http.MethodGet, "/health", nil, &status); err != nil {
		return model.HealthStatus{}, err
	}
	return status, nil
}

// do sends one request. A 2xx reply is decoded into out when out is non-nil;
// any other reply becomes an *Error carrying the body's "error" field.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp model.ErrorResponse
		if err := json.Unmarshal(data, &errResp); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("decode error reply (status %d): %w", resp.StatusCode, err)}
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return nil
}
