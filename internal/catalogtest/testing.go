package catalogtest

import (
	"log/slog"
	"net/http/httptest"
	"testing"
)

// Start runs a fake metadata server on a local port for the duration of
// the test and returns it with its platform URL.
func Start(t testing.TB, opts ...Option) (*Server, string) {
	t.Helper()

	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	srv, err := New(opts...)
	if err != nil {
		t.Fatalf("failed to create fake metadata server: %v", err)
	}

	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		// event streams stay active until their connection is dropped
		ts.CloseClientConnections()
		ts.Close()
	})
	return srv, ts.URL
}
