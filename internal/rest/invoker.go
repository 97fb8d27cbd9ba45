// Package rest issues catalog requests and turns their response envelopes
// into typed results or typed errors.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/odpi/egeria-sub150/internal/httpclient"
	"github.com/odpi/egeria-sub150/internal/otel"
	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

// TracerName is the instrumentation scope of the invoker's spans
const TracerName = "github.com/odpi/egeria-sub150/rest"

// Invoker sends requests to one metadata server on one platform.
// It is safe for concurrent use.
type Invoker struct {
	client     httpclient.Client
	root       string
	serverName string
	tracer     trace.Tracer
	metrics    *telemetry.ClientMetrics
	logger     *slog.Logger
}

// Option configures an Invoker
type Option func(*Invoker)

// WithTracer sets the tracer used for request spans
func WithTracer(tracer trace.Tracer) Option {
	return func(i *Invoker) {
		i.tracer = tracer
	}
}

// WithMetrics sets the instruments used to record request outcomes
func WithMetrics(metrics *telemetry.ClientMetrics) Option {
	return func(i *Invoker) {
		i.metrics = metrics
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewInvoker creates an invoker for serverName hosted on the platform at root
func NewInvoker(client httpclient.Client, root, serverName string, opts ...Option) *Invoker {
	i := &Invoker{
		client:     client,
		root:       root,
		serverName: serverName,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ServerName returns the metadata server every request is addressed to
func (i *Invoker) ServerName() string {
	return i.serverName
}

// Root returns the platform root URL
func (i *Invoker) Root() string {
	return i.root
}

// envelopePtr is satisfied by pointers to response envelope types
type envelopePtr[T any] interface {
	*T
	api.Envelope
}

// Invoke performs one request and decodes the response envelope into T.
//
// The server name is always placeholder {0}; params fill {1} onwards, with
// the user id first. A nil body on a POST sends an empty request body
// object. On success the returned envelope is never nil. Failures are
// returned as InvalidParameterError, UserNotAuthorizedError or
// PropertyServerError.
func Invoke[T any, PT envelopePtr[T]](
	ctx context.Context,
	inv *Invoker,
	operation, method, template string,
	body any,
	params ...any,
) (*T, error) {
	all := make([]any, 0, len(params)+1)
	all = append(all, inv.serverName)
	all = append(all, params...)

	target, err := formatURL(operation, inv.root, template, all)
	if err != nil {
		return nil, err
	}

	ctx, span := otel.StartSpan(ctx, inv.tracer, "catalog."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			otel.AttrServerName.String(inv.serverName),
			otel.AttrOperation.String(operation),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := invoke[T, PT](ctx, inv, operation, method, target, body, userOf(params))
	duration := time.Since(start)

	kind := ""
	if err != nil {
		kind = apierrors.KindOf(err).String()
		otel.RecordErrorKind(span, err, kind)
		inv.logger.DebugContext(ctx, "Catalog request failed",
			"operation", operation,
			"method", method,
			"server", inv.serverName,
			"duration", duration,
			"error", err,
		)
	} else {
		if page, ok := any(result).(interface{ Len() int }); ok {
			span.SetAttributes(otel.AttrResultCount.Int(page.Len()))
		}
		inv.logger.DebugContext(ctx, "Catalog request completed",
			"operation", operation,
			"method", method,
			"server", inv.serverName,
			"duration", duration,
		)
	}
	inv.metrics.RecordRequest(ctx, operation, method, duration, kind)

	return result, err
}

func invoke[T any, PT envelopePtr[T]](
	ctx context.Context,
	inv *Invoker,
	operation, method, target string,
	body any,
	userID string,
) (*T, error) {
	var (
		data []byte
		err  error
	)

	switch method {
	case http.MethodGet:
		data, err = inv.client.Get(ctx, target)
	case http.MethodPost:
		if body == nil {
			body = api.NullRequestBody{Class: "NullRequestBody"}
		}
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return nil, apierrors.NewInvalidParameter(operation, "requestBody",
				"the request body could not be encoded: %v", marshalErr)
		}
		data, err = inv.client.Post(ctx, target, payload)
	default:
		return nil, apierrors.NewInvalidParameter(operation, "method",
			"HTTP method %s is not supported", method)
	}

	if err != nil {
		return nil, translateTransportError(operation, userID, err)
	}

	result := PT(new(T))
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apierrors.NewPropertyServer(operation, http.StatusOK, err,
			"the response from server %s could not be decoded", inv.serverName)
	}

	if status := result.Status(); status.Failed() {
		return nil, translateStatus(operation, userID, status, 0, nil)
	}

	return (*T)(result), nil
}

// translateTransportError maps a failed round trip to an error kind. HTTP
// error responses are inspected for an envelope first.
func translateTransportError(operation, userID string, err error) error {
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		return apierrors.NewPropertyServer(operation, 0, err, "the metadata server could not be reached")
	}

	var status api.FFDCResponse
	if len(httpErr.Body) > 0 && json.Unmarshal(httpErr.Body, &status) == nil && status.Failed() {
		return translateStatus(operation, userID, &status, httpErr.StatusCode, httpErr)
	}

	kind := apierrors.KindForStatus(httpErr.StatusCode)
	if kind == apierrors.KindUnknown {
		kind = apierrors.KindPropertyServer
	}
	return newError(kind, userID, apierrors.Detail{
		Operation: operation,
		HTTPCode:  httpErr.StatusCode,
		Message:   fmt.Sprintf("the metadata server returned %s", httpErr.Status),
		Cause:     httpErr,
	})
}

// translateStatus maps a failed status block to an error kind: the exception
// class wins, then the related HTTP code, then the transport status.
func translateStatus(operation, userID string, status *api.FFDCResponse, httpStatus int, cause error) error {
	code := status.RelatedHTTPCode
	if code == 0 || code == http.StatusOK {
		code = httpStatus
	}

	kind := apierrors.KindForExceptionClass(status.ExceptionClassName)
	if kind == apierrors.KindUnknown || kind == apierrors.KindConnectorChecked {
		kind = apierrors.KindForStatus(code)
	}
	if kind == apierrors.KindUnknown {
		kind = apierrors.KindPropertyServer
	}

	message := status.ExceptionErrorMessage
	if message == "" {
		message = status.ActionDescription
	}
	if message == "" && status.ExceptionClassName != "" {
		message = "the metadata server raised " + status.ExceptionClassName
	}

	return newError(kind, userID, apierrors.Detail{
		Operation:    operation,
		HTTPCode:     code,
		MessageID:    status.ExceptionErrorMessageID,
		Message:      message,
		SystemAction: status.ExceptionSystemAction,
		UserAction:   status.ExceptionUserAction,
		Cause:        cause,
	})
}

func newError(kind apierrors.Kind, userID string, detail apierrors.Detail) error {
	if kind == apierrors.KindUserNotAuthorized {
		return &apierrors.UserNotAuthorizedError{Detail: detail, UserID: userID}
	}
	return apierrors.New(kind, detail)
}

func userOf(params []any) string {
	if len(params) == 0 {
		return ""
	}
	if s, ok := params[0].(string); ok {
		return s
	}
	return ""
}
