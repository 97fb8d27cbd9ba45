package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry owns the tracer and meter providers of a process and their shutdown.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu       sync.Mutex
	shutdown []func(context.Context) error
}

// Option changes how New builds the providers
type Option func(*options)

type options struct {
	global   bool
	exporter sdktrace.SpanExporter
	reader   sdkmetric.Reader
}

// WithGlobal installs the providers and the W3C propagator as process globals.
// Commands set this; library callers pass the providers explicitly instead.
func WithGlobal() Option {
	return func(o *options) {
		o.global = true
	}
}

// WithSpanExporter replaces the OTLP span exporter, e.g. with an in-memory exporter
func WithSpanExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exporter
	}
}

// WithMetricReader replaces the periodic OTLP reader, e.g. with a manual reader
func WithMetricReader(reader sdkmetric.Reader) Option {
	return func(o *options) {
		o.reader = reader
	}
}

// New builds the providers described by cfg. A nil or disabled cfg, or a
// disabled signal, yields no-op providers. The caller must call Shutdown.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telemetry{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	if cfg == nil || !cfg.Enabled {
		slog.Debug("Telemetry disabled")
		return t, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	resolved := cfg.withDefaults()
	cfg = &resolved

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.tracingEnabled() {
		tp, err := newTracerProvider(ctx, cfg, res, o.exporter)
		if err != nil {
			return nil, err
		}
		t.tracerProvider = tp
		t.shutdown = append(t.shutdown, tp.Shutdown)
	}

	if cfg.metricsEnabled() {
		mp, err := newMeterProvider(ctx, cfg, res, o.reader)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, err
		}
		t.meterProvider = mp
		t.shutdown = append(t.shutdown, mp.Shutdown)
	}

	if o.global {
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetMeterProvider(t.meterProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	if cfg.Insecure {
		slog.Warn("Telemetry is exported over plain HTTP", "endpoint", cfg.Endpoint)
	}
	slog.Info("Telemetry initialized",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"endpoint", cfg.Endpoint,
		"tracing", cfg.tracingEnabled(),
		"metrics", cfg.metricsEnabled(),
		"global", o.global,
	)
	return t, nil
}

func newResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Shutdown flushes and stops the SDK providers, metrics first.
// Later calls do nothing.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	shutdown := t.shutdown
	t.shutdown = nil
	t.mu.Unlock()

	var errs []error
	for _, fn := range slices.Backward(shutdown) {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}
	return nil
}
