package events

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/pkg/api"
)

// SSEProviderName is the provider name of the server-sent events connector
const SSEProviderName = "sse"

// maxEventSize bounds one event line
const maxEventSize = 1 << 20

// SSEConnector reads out-topic events from a text/event-stream endpoint
type SSEConnector struct {
	address string
	client  *http.Client
	logger  *slog.Logger
	metrics *telemetry.EventMetrics

	mu        sync.RWMutex
	listeners []Listener

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSSEConnector is the ConnectorProvider of SSEConnector
func NewSSEConnector(conn *api.Connection, deps Dependencies) (Connector, error) {
	if conn == nil || conn.Endpoint == nil || conn.Endpoint.Address == "" {
		return nil, errors.New("the connection has no endpoint address")
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SSEConnector{
		address: conn.Endpoint.Address,
		client:  client,
		logger:  logger,
		metrics: deps.Metrics,
	}, nil
}

// RegisterListener adds a listener. Events already delivered are not replayed.
func (c *SSEConnector) RegisterListener(listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// Start opens the event stream and begins delivery in the background
func (c *SSEConnector) Start(ctx context.Context) error {
	if c.done != nil {
		return errors.New("connector already started")
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, c.address, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create event stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// the caller's ctx bounds connecting, not the stream
	stop := context.AfterFunc(ctx, cancel)
	resp, err := c.client.Do(req)
	stop()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to connect to %s: %w", c.address, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		cancel()
		return fmt.Errorf("event stream %s returned %s", c.address, resp.Status)
	}
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType != "text/event-stream" {
		_ = resp.Body.Close()
		cancel()
		return fmt.Errorf("event stream %s returned content type %q", c.address, mediaType)
	}

	c.cancel = cancel
	c.done = make(chan struct{})
	go c.read(streamCtx, resp.Body)

	c.logger.Debug("Event stream connected", "address", c.address)
	return nil
}

// Close stops delivery and waits for the reader to finish
func (c *SSEConnector) Close() error {
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	<-c.done
	return nil
}

func (c *SSEConnector) read(ctx context.Context, body io.ReadCloser) {
	defer close(c.done)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.dispatch(ctx, data.String())
				data.Reset()
			}
		case strings.HasPrefix(line, ":"):
			// comment or keep-alive
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.logger.Warn("Event stream ended", "address", c.address, "error", err)
	}
}

func (c *SSEConnector) dispatch(ctx context.Context, payload string) {
	var event api.AssetOwnerEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.logger.Warn("Skipping malformed event", "address", c.address, "error", err)
		return
	}
	c.metrics.RecordEvent(ctx, string(event.EventType))

	c.mu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.RUnlock()

	for _, l := range listeners {
		l.ProcessEvent(ctx, event)
	}
}
