package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	nrpkg "github.com/piresc/tallytrack/internal/pkg/newrelic"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 10 * time.Second
	// APIKeyHeader is the header name for API key
	APIKeyHeader = "X-API-Key"

	maxBodyBytes = 1 << 20
)

// requestIDKey carries the inbound request id on outbound calls
type requestIDKey struct{}

// WithRequestID stores a request id to forward as X-Request-ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Client is a small JSON/form client with New Relic external segments
type Client struct {
	BaseURL    string
	HTTPClient *nethttp.Client
	apiKey     string
}

// Option customises a Client
type Option func(*Client)

// WithAPIKey sends X-API-Key on every request
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a new HTTP client
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &nethttp.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is a fully read response
type Response struct {
	StatusCode int
	Header     nethttp.Header
	Body       []byte
}

// DecodeJSON unmarshals the body into v
func (r *Response) DecodeJSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// IsSuccess reports a 2xx status
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do sends the request and reads at most 1 MiB of the body. Only transport
// failures are returned as errors; callers classify status codes themselves.
func (c *Client) Do(ctx context.Context, method, endpoint string, body io.Reader, header nethttp.Header) (*Response, error) {
	req, err := nethttp.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get(echo.HeaderAccept) == "" {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok && requestID != "" {
		req.Header.Set(echo.HeaderXRequestID, requestID)
	}

	resp, err := nrpkg.InstrumentHTTPRequest(ctx, req, func() (*nethttp.Response, error) {
		return c.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, endpoint string, header nethttp.Header) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, endpoint, nil, header)
}

// PostJSON marshals payload and POSTs it
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload interface{}, header nethttp.Header) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	if header == nil {
		header = nethttp.Header{}
	}
	header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return c.Do(ctx, nethttp.MethodPost, endpoint, body, header)
}

// PostForm POSTs url-encoded form values
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values) (*Response, error) {
	header := nethttp.Header{}
	header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	return c.Do(ctx, nethttp.MethodPost, endpoint, strings.NewReader(form.Encode()), header)
}
