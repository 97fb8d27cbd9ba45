// Package httpclient provides the HTTP client used to reach open metadata servers
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (100MB)
	MaxResponseSize = 100 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "egeria-go-client/1.0"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is an interface for HTTP operations
type Client interface {
	// Get performs an HTTP GET request and returns the response body
	Get(ctx context.Context, url string) ([]byte, error)

	// Post performs an HTTP POST request with a JSON body and returns the response body
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Credentials are attached to every request. Set either User and Password
// for basic authentication or Token for a bearer token.
type Credentials struct {
	User     string
	Password string
	Token    string
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithTimeout sets the per-request timeout. Zero keeps DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *DefaultClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithCredentials attaches credentials to every request
func WithCredentials(creds *Credentials) Option {
	return func(c *DefaultClient) {
		c.credentials = creds
	}
}

// WithMaxRetries sets how many times a GET is retried after a connection failure
// or a 502, 503 or 504 response. Other HTTP error statuses are not retried.
func WithMaxRetries(retries uint) Option {
	return func(c *DefaultClient) {
		c.maxRetries = retries
	}
}

// WithHTTPClient uses a pre-built http.Client. Its transport is wrapped for tracing.
func WithHTTPClient(client *http.Client) Option {
	return func(c *DefaultClient) {
		if client != nil {
			c.base = client
		}
	}
}

// WithTracerProvider sets the tracer provider used for client spans
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *DefaultClient) {
		c.tracerProvider = tp
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *DefaultClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client         *http.Client
	base           *http.Client
	timeout        time.Duration
	credentials    *Credentials
	maxRetries     uint
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// NewDefaultClient creates a new default HTTP client with the specified timeout
// If timeout is 0, uses DefaultTimeout
func NewDefaultClient(timeout time.Duration) Client {
	return NewClient(WithTimeout(timeout))
}

// NewClient creates a client configured by opts
func NewClient(opts ...Option) *DefaultClient {
	c := &DefaultClient{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if c.base != nil && c.base.Transport != nil {
		transport = c.base.Transport
	}
	var otelOpts []otelhttp.Option
	if c.tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(c.tracerProvider))
	}

	c.client = &http.Client{
		Transport: otelhttp.NewTransport(transport, otelOpts...),
		Timeout:   c.timeout,
	}
	if c.base != nil {
		c.client.Jar = c.base.Jar
		c.client.CheckRedirect = c.base.CheckRedirect
		if c.base.Timeout > 0 {
			c.client.Timeout = c.base.Timeout
		}
	}
	return c
}

// Get performs an HTTP GET request. Connection failures and unavailable
// responses are retried up to the configured maximum with exponential backoff.
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	if c.maxRetries == 0 {
		return c.do(ctx, http.MethodGet, url, nil)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() ([]byte, error) {
		data, err := c.do(ctx, http.MethodGet, url, nil)
		if err == nil {
			return data, nil
		}
		var httpErr *HTTPError
		if ctx.Err() != nil || (errors.As(err, &httpErr) && !httpErr.Unavailable()) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.DebugContext(ctx, "Retrying request",
				"url", url, "error", err, "backoff", next)
		}),
	)
}

// Post performs an HTTP POST request with a JSON body. Posts are never retried.
func (c *DefaultClient) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

func (c *DefaultClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.credentials != nil {
		switch {
		case c.credentials.Token != "":
			req.Header.Set("Authorization", "Bearer "+c.credentials.Token)
		case c.credentials.User != "":
			req.SetBasicAuth(c.credentials.User, c.credentials.Password)
		}
	}

	// Execute request
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Check Content-Length header if available
	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// Use LimitReader to prevent reading more than MaxResponseSize
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1) // +1 to detect if limit exceeded
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newHTTPError(req, resp, data)
	}

	return data, nil
}
