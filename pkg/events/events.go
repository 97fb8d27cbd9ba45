// Package events delivers the out-topic events of an access service to
// registered listeners. The topic connector is created lazily by the first
// listener registration and shared by every later one.
package events

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/pkg/api"
)

//go:generate mockgen -destination=mocks/mock_events.go -package=mocks -source=events.go Listener,ConnectionSource

// Listener receives out-topic events. ProcessEvent is called from the
// connector's goroutine and should not block for long.
type Listener interface {
	ProcessEvent(ctx context.Context, event api.AssetOwnerEvent)
}

// ListenerFunc adapts a function to a Listener
type ListenerFunc func(ctx context.Context, event api.AssetOwnerEvent)

// ProcessEvent calls f
func (f ListenerFunc) ProcessEvent(ctx context.Context, event api.AssetOwnerEvent) {
	f(ctx, event)
}

// ConnectionSource returns the connection describing an access service's out topic
type ConnectionSource interface {
	GetOutTopicConnection(ctx context.Context, userID, callerID string) (*api.Connection, error)
}

// Connector is anything a provider builds from a connection
type Connector interface {
	Close() error
}

// TopicConnector is a connector able to deliver out-topic events
type TopicConnector interface {
	Connector
	// Start connects to the topic. ctx bounds connecting only; delivery
	// continues until Close.
	Start(ctx context.Context) error
	RegisterListener(listener Listener)
}

// Dependencies are handed to connector providers
type Dependencies struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *telemetry.EventMetrics
}
