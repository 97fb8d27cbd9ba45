package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/internal/validators"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

const registerOperation = "registerListener"

// ErrClosed is returned by RegisterListener after Close
var ErrClosed = errors.New("event client is closed")

// Options configure a Client. The zero value is usable.
type Options struct {
	// CallerID identifies this client to the server; defaults to a random id
	CallerID string
	// Registry defaults to DefaultRegistry()
	Registry *Registry
	// HTTPClient is handed to connectors; defaults to a client without timeout
	HTTPClient *http.Client
	// Logger defaults to slog.Default()
	Logger *slog.Logger
	// MeterProvider enables event metrics
	MeterProvider metric.MeterProvider
}

// Client registers listeners for the out-topic events of one access service.
// It is safe for concurrent use.
type Client struct {
	source   ConnectionSource
	callerID string
	registry *Registry
	deps     Dependencies
	logger   *slog.Logger
	metrics  *telemetry.EventMetrics

	// guards the lazily created connector; a fatal failure is kept in err
	mu        sync.Mutex
	connector TopicConnector
	err       error
	closed    bool
}

// NewClient creates an event client reading connections from source
func NewClient(source ConnectionSource, opts Options) (*Client, error) {
	if source == nil {
		return nil, fmt.Errorf("connection source is required")
	}
	if opts.CallerID == "" {
		opts.CallerID = "catalog-events-" + uuid.NewString()
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	metrics, err := telemetry.NewEventMetrics(opts.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create event metrics: %w", err)
	}

	return &Client{
		source:   source,
		callerID: opts.CallerID,
		registry: opts.Registry,
		deps: Dependencies{
			HTTPClient: opts.HTTPClient,
			Logger:     opts.Logger,
			Metrics:    metrics,
		},
		logger:  opts.Logger,
		metrics: metrics,
	}, nil
}

// CallerID returns the id this client presents to the server
func (c *Client) CallerID() string {
	return c.callerID
}

// RegisterListener adds listener to the out-topic connector, creating the
// connector on first use. When the server offers no usable connector the
// returned ConnectorCheckedError is final: every later call returns it too.
func (c *Client) RegisterListener(ctx context.Context, userID string, listener Listener) error {
	if err := validators.ValidateUserID(registerOperation, userID); err != nil {
		return err
	}
	if err := validators.ValidateObject(registerOperation, listener != nil, "listener"); err != nil {
		return err
	}

	connector, err := c.connectorFor(ctx, userID)
	if err != nil {
		return err
	}

	connector.RegisterListener(listener)
	c.metrics.RecordListenerAdded(ctx)
	return nil
}

func (c *Client) connectorFor(ctx context.Context, userID string) (TopicConnector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return nil, ErrClosed
	case c.err != nil:
		return nil, c.err
	case c.connector != nil:
		return c.connector, nil
	}

	conn, err := c.source.GetOutTopicConnection(ctx, userID, c.callerID)
	if err != nil {
		// transport and authorization failures may be retried by the caller
		return nil, err
	}
	if conn == nil {
		return nil, c.fail(apierrors.NewConnectorChecked(registerOperation, nil,
			"the server returned no out topic connection for caller %s", c.callerID))
	}

	var providerName string
	if conn.ConnectorType != nil {
		providerName = conn.ConnectorType.ConnectorProviderClassName
	}
	provider, ok := c.registry.Lookup(providerName)
	if !ok {
		return nil, c.fail(apierrors.NewConnectorChecked(registerOperation, nil,
			"no connector provider is registered for %q", providerName))
	}

	connector, err := provider(conn, c.deps)
	if err != nil {
		return nil, c.fail(apierrors.NewConnectorChecked(registerOperation, err,
			"connector provider %q could not build a connector", providerName))
	}

	if connector == nil {
		return nil, c.fail(apierrors.NewConnectorChecked(registerOperation, nil,
			"connector provider %q returned no connector", providerName))
	}

	topic, ok := connector.(TopicConnector)
	if !ok {
		if closeErr := connector.Close(); closeErr != nil {
			c.logger.Warn("Failed to close unusable connector", "provider", providerName, "error", closeErr)
		}
		return nil, c.fail(apierrors.NewConnectorChecked(registerOperation, nil,
			"connector provider %q returned %T, which is not a topic connector", providerName, connector))
	}

	if err := topic.Start(ctx); err != nil {
		// the next registration builds a fresh connector
		if closeErr := topic.Close(); closeErr != nil {
			c.logger.Warn("Failed to close connector", "provider", providerName, "error", closeErr)
		}
		return nil, apierrors.NewPropertyServer(registerOperation, 0, err,
			"the out topic connector could not be started")
	}

	c.logger.Info("Out topic connector started", "provider", providerName, "caller", c.callerID)
	c.connector = topic
	return topic, nil
}

func (c *Client) fail(err error) error {
	c.logger.Error("Out topic connector unavailable", "caller", c.callerID, "error", err)
	c.err = err
	return err
}

// Close stops the connector. Listeners receive no further events.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.connector == nil {
		return nil
	}
	return c.connector.Close()
}
