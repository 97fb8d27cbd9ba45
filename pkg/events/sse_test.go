package events_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/events"
)

func streamServer(t *testing.T, contentType string, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newSSE(t *testing.T, address string, deps events.Dependencies) *events.SSEConnector {
	t.Helper()

	deps.Logger = slog.New(slog.DiscardHandler)
	connector, err := events.NewSSEConnector(&api.Connection{Endpoint: &api.Endpoint{Address: address}}, deps)
	require.NoError(t, err)
	sse, ok := connector.(*events.SSEConnector)
	require.True(t, ok)
	return sse
}

func TestSSEConnector_Dispatch(t *testing.T) {
	t.Parallel()

	body := ": connected\n\n" +
		`data: {"eventType":"NEW_ELEMENT_CREATED","elementHeader":{"guid":"G1","typeName":"DataFile"}}` + "\n\n" +
		": keepalive\n\n" +
		"data: not json\n\n" +
		`data: {"eventType":"ELEMENT_DELETED",` + "\n" +
		`data: "elementHeader":{"guid":"G2"}}` + "\n\n"
	server := streamServer(t, "text/event-stream; charset=utf-8", http.StatusOK, body)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := telemetry.NewEventMetrics(provider)
	require.NoError(t, err)

	sse := newSSE(t, server.URL, events.Dependencies{Metrics: metrics})
	received := make(chan api.AssetOwnerEvent, 4)
	sse.RegisterListener(events.ListenerFunc(func(_ context.Context, e api.AssetOwnerEvent) {
		received <- e
	}))

	require.NoError(t, sse.Start(context.Background()))
	t.Cleanup(func() { _ = sse.Close() })

	var got []api.AssetOwnerEvent
	for len(got) < 2 {
		select {
		case e := <-received:
			got = append(got, e)
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d events, want 2", len(got))
		}
	}

	assert.Equal(t, api.EventNewElement, got[0].EventType)
	assert.Equal(t, "G1", got[0].ElementHeader.GUID)
	assert.Equal(t, api.EventDeletedElement, got[1].EventType)
	assert.Equal(t, "G2", got[1].ElementHeader.GUID)

	require.NoError(t, sse.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "catalog_events_received_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	assert.EqualValues(t, 2, total)
}

func TestSSEConnector_StartFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		status      int
	}{
		{name: "error status", contentType: "text/event-stream", status: http.StatusServiceUnavailable},
		{name: "not an event stream", contentType: "application/json", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := streamServer(t, tt.contentType, tt.status, "{}")
			sse := newSSE(t, server.URL, events.Dependencies{})
			require.Error(t, sse.Start(context.Background()))
			assert.NoError(t, sse.Close())
		})
	}

	t.Run("no endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := events.NewSSEConnector(&api.Connection{}, events.Dependencies{})
		assert.Error(t, err)
	})
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	registry := events.DefaultRegistry()
	assert.Equal(t, []string{events.SSEProviderName}, registry.Names())

	_, ok := registry.Lookup("kafka")
	assert.False(t, ok)
}
