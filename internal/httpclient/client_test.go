package httpclient_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpi/egeria-sub150/internal/httpclient"
)

// newTestServer creates a new test server with keep-alives disabled.
// This prevents flaky tests when running in parallel, as closing a server
// with keep-alives enabled can affect other tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

// flakyTransport fails the first failures round trips with a connection error
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection refused")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestNewDefaultClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{
			name:    "create client with custom timeout",
			timeout: 5 * time.Second,
		},
		{
			name:    "create client with zero timeout uses default",
			timeout: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewDefaultClient(tt.timeout)

			require.NotNil(t, client, "client should not be nil")
		})
	}
}

func TestDefaultClient_Get_SuccessfulRequests(t *testing.T) {
	t.Parallel()

	var receivedUserAgent, receivedAccept string

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		receivedAccept = r.Header.Get("Accept")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"class":"VoidResponse","relatedHTTPCode":200}`))
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)

	data, err := client.Get(context.Background(), mockServer.URL)

	require.NoError(t, err)
	assert.JSONEq(t, `{"class":"VoidResponse","relatedHTTPCode":200}`, string(data))
	assert.Equal(t, httpclient.UserAgent, receivedUserAgent, "User-Agent header should be set correctly")
	assert.Equal(t, "application/json", receivedAccept, "Accept header should be set correctly")
}

func TestDefaultClient_Post(t *testing.T) {
	t.Parallel()

	var (
		receivedMethod      string
		receivedContentType string
		receivedBody        string
	)

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		_, _ = w.Write([]byte(`{"guid":"g-1"}`))
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(0)

	data, err := client.Post(context.Background(), mockServer.URL, []byte(`{"name":"x"}`))

	require.NoError(t, err)
	assert.Equal(t, `{"guid":"g-1"}`, string(data))
	assert.Equal(t, http.MethodPost, receivedMethod)
	assert.Equal(t, "application/json", receivedContentType)
	assert.Equal(t, `{"name":"x"}`, receivedBody)
}

func TestDefaultClient_Get_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		responseBody  string
		errorContains string
	}{
		{
			name:          "404 Not Found",
			statusCode:    http.StatusNotFound,
			responseBody:  "Not Found",
			errorContains: "HTTP 404",
		},
		{
			name:          "500 Internal Server Error",
			statusCode:    http.StatusInternalServerError,
			responseBody:  `{"relatedHTTPCode":500,"exceptionClassName":"PropertyServerException"}`,
			errorContains: "HTTP 500",
		},
		{
			name:          "401 Unauthorized",
			statusCode:    http.StatusUnauthorized,
			responseBody:  "Unauthorized",
			errorContains: "HTTP 401",
		},
		{
			name:          "503 Service Unavailable",
			statusCode:    http.StatusServiceUnavailable,
			responseBody:  "Service Unavailable",
			errorContains: "HTTP 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer mockServer.Close()

			client := httpclient.NewDefaultClient(30 * time.Second)

			_, err := client.Get(context.Background(), mockServer.URL)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			var httpErr *httpclient.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.responseBody, string(httpErr.Body), "body should be kept for envelope parsing")
		})
	}
}

func TestDefaultClient_Get_NetworkErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		url           string
		errorContains string
	}{
		{
			name:          "invalid URL scheme",
			url:           "://invalid-url",
			errorContains: "failed to create request",
		},
		{
			name:          "unreachable host",
			url:           "http://invalid-host-does-not-exist.local:9999",
			errorContains: "failed to execute request",
		},
		{
			name:          "empty URL",
			url:           "",
			errorContains: "failed to execute request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := httpclient.NewDefaultClient(30 * time.Second)

			_, err := client.Get(context.Background(), tt.url)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestDefaultClient_Get_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("should respect context cancellation", func(t *testing.T) {
		t.Parallel()

		mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(2 * time.Second)
			w.WriteHeader(http.StatusOK)
		}))
		defer mockServer.Close()

		client := httpclient.NewDefaultClient(30 * time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := client.Get(ctx, mockServer.URL)

		require.Error(t, err)
	})

	t.Run("should respect context timeout", func(t *testing.T) {
		t.Parallel()

		mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(2 * time.Second)
			w.WriteHeader(http.StatusOK)
		}))
		defer mockServer.Close()

		client := httpclient.NewDefaultClient(30 * time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, mockServer.URL)

		require.Error(t, err)
	})
}

func TestDefaultClient_Get_SizeLimitExceeded(t *testing.T) {
	t.Parallel()

	mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Set Content-Length to 101MB
		w.Header().Set("Content-Length", fmt.Sprintf("%d", 101*1024*1024))
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	client := httpclient.NewDefaultClient(30 * time.Second)

	_, err := client.Get(context.Background(), mockServer.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
	assert.Contains(t, err.Error(), "100.00 MB")
}

func TestDefaultClient_Credentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		creds      *httpclient.Credentials
		wantHeader string
	}{
		{
			name:       "no credentials",
			creds:      nil,
			wantHeader: "",
		},
		{
			name:       "basic credentials",
			creds:      &httpclient.Credentials{User: "npa", Password: "secret"},
			wantHeader: "Basic bnBhOnNlY3JldA==",
		},
		{
			name:       "bearer token wins over basic",
			creds:      &httpclient.Credentials{User: "npa", Password: "secret", Token: "tok"},
			wantHeader: "Bearer tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received string
			mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				received = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
			}))
			defer mockServer.Close()

			client := httpclient.NewClient(httpclient.WithCredentials(tt.creds))

			_, err := client.Get(context.Background(), mockServer.URL)

			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, received)
		})
	}
}

func TestDefaultClient_Retries(t *testing.T) {
	t.Parallel()

	t.Run("get is retried after connection failures", func(t *testing.T) {
		t.Parallel()

		mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		defer mockServer.Close()

		transport := &flakyTransport{failures: 2}
		client := httpclient.NewClient(
			httpclient.WithHTTPClient(&http.Client{Transport: transport}),
			httpclient.WithMaxRetries(3),
		)

		data, err := client.Get(context.Background(), mockServer.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))
		assert.Equal(t, int32(3), transport.calls.Load())
	})

	t.Run("http errors are not retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer mockServer.Close()

		client := httpclient.NewClient(httpclient.WithMaxRetries(3))

		_, err := client.Get(context.Background(), mockServer.URL)

		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unavailable responses are retried", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		mockServer := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		}))
		defer mockServer.Close()

		client := httpclient.NewClient(httpclient.WithMaxRetries(3))

		data, err := client.Get(context.Background(), mockServer.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(data))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("post is never retried", func(t *testing.T) {
		t.Parallel()

		transport := &flakyTransport{failures: 1}
		client := httpclient.NewClient(
			httpclient.WithHTTPClient(&http.Client{Transport: transport}),
			httpclient.WithMaxRetries(3),
		)

		_, err := client.Post(context.Background(), "http://127.0.0.1:1/unused", []byte(`{}`))

		require.Error(t, err)
		assert.Equal(t, int32(1), transport.calls.Load())
	})
}
