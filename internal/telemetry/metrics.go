package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ClientMetricsMeterName is the name used for the REST client meter
	ClientMetricsMeterName = "github.com/odpi/egeria-sub150/client"

	// EventMetricsMeterName is the name used for the event client meter
	EventMetricsMeterName = "github.com/odpi/egeria-sub150/events"

	// OutcomeSuccess is the outcome attribute of a request that returned without error
	OutcomeSuccess = "success"
)

// ClientMetrics holds the OpenTelemetry instruments for catalog requests
type ClientMetrics struct {
	requestDuration metric.Float64Histogram
	errorsTotal     metric.Int64Counter
}

// NewClientMetrics creates a new ClientMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewClientMetrics(provider metric.MeterProvider) (*ClientMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ClientMetricsMeterName)

	requestDuration, err := meter.Float64Histogram(
		"catalog_client_request_duration_seconds",
		metric.WithDescription("Duration of catalog requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"catalog_client_errors_total",
		metric.WithDescription("Number of failed catalog requests by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ClientMetrics{
		requestDuration: requestDuration,
		errorsTotal:     errorsTotal,
	}, nil
}

// RecordRequest records one catalog request. An empty errorKind means success.
func (m *ClientMetrics) RecordRequest(
	ctx context.Context, operation, method string, duration time.Duration, errorKind string,
) {
	if m == nil || m.requestDuration == nil {
		return
	}

	outcome := OutcomeSuccess
	if errorKind != "" {
		outcome = errorKind
	}

	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("method", method),
		attribute.String("outcome", outcome),
	))

	if errorKind != "" && m.errorsTotal != nil {
		m.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("kind", errorKind),
		))
	}
}

// EventMetrics holds the OpenTelemetry instruments for out-topic events
type EventMetrics struct {
	eventsReceived metric.Int64Counter
	listeners      metric.Int64UpDownCounter
}

// NewEventMetrics creates a new EventMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewEventMetrics(provider metric.MeterProvider) (*EventMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(EventMetricsMeterName)

	eventsReceived, err := meter.Int64Counter(
		"catalog_events_received_total",
		metric.WithDescription("Number of out-topic events dispatched to listeners"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	listeners, err := meter.Int64UpDownCounter(
		"catalog_event_listeners",
		metric.WithDescription("Number of registered event listeners"),
		metric.WithUnit("{listener}"),
	)
	if err != nil {
		return nil, err
	}

	return &EventMetrics{
		eventsReceived: eventsReceived,
		listeners:      listeners,
	}, nil
}

// RecordEvent counts one event of the given type
func (m *EventMetrics) RecordEvent(ctx context.Context, eventType string) {
	if m == nil || m.eventsReceived == nil {
		return
	}
	m.eventsReceived.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}

// RecordListenerAdded increments the listener count
func (m *EventMetrics) RecordListenerAdded(ctx context.Context) {
	if m == nil || m.listeners == nil {
		return
	}
	m.listeners.Add(ctx, 1)
}
