// Package otel provides OpenTelemetry instrumentation utilities for the catalog client.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by every span the client emits.
const (
	AttrServerName  = attribute.Key("catalog.server.name")
	AttrOperation   = attribute.Key("catalog.operation")
	AttrErrorKind   = attribute.Key("catalog.error.kind")
	AttrResultCount = attribute.Key("result.count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// It safely handles nil spans and nil errors.
// The status description stays generic; server messages may carry element
// properties, so the detail only goes on the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// RecordErrorKind behaves like RecordError and also tags the span with the
// error kind so that failures can be grouped without parsing messages.
func RecordErrorKind(span trace.Span, err error, kind string) {
	if err == nil || span == nil {
		return
	}
	span.SetAttributes(AttrErrorKind.String(kind))
	RecordError(span, err)
}
