// Package apierrors defines the error kinds returned by every catalog operation.
//
// Callers are expected to branch on the kind: an InvalidParameterError means
// the input needs fixing, a UserNotAuthorizedError means the caller identity
// was rejected, and a PropertyServerError means the server or the transport
// failed and the call may be retried later.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies the category of a catalog error
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that are not catalog errors
	KindUnknown Kind = iota
	// KindInvalidParameter is a rejected argument or request
	KindInvalidParameter
	// KindUserNotAuthorized is a rejected caller identity
	KindUserNotAuthorized
	// KindPropertyServer is a server-side or transport failure
	KindPropertyServer
	// KindConnectorChecked is a failure to establish an event connector
	KindConnectorChecked
)

// String returns the exception name used on the wire for the kind
func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "InvalidParameterException"
	case KindUserNotAuthorized:
		return "UserNotAuthorizedException"
	case KindPropertyServer:
		return "PropertyServerException"
	case KindConnectorChecked:
		return "ConnectorCheckedException"
	default:
		return "UnknownException"
	}
}

// Detail carries the diagnostic fields shared by every error kind.
type Detail struct {
	// Operation is the client operation that failed
	Operation string
	// Parameter names the offending parameter for local validation failures
	Parameter string
	// HTTPCode is the HTTP status related to the failure, 0 when no request was issued
	HTTPCode int
	// MessageID is the server message identifier, if any
	MessageID string
	// Message is the human readable description
	Message string
	// SystemAction describes what the server did in response to the failure
	SystemAction string
	// UserAction describes what the caller should do
	UserAction string
	// Cause is the underlying error, if any
	Cause error
}

func (d *Detail) format(kind Kind) string {
	var b strings.Builder
	b.WriteString(kind.String())
	if d.Operation != "" {
		fmt.Fprintf(&b, " in %s", d.Operation)
	}
	if d.MessageID != "" {
		fmt.Fprintf(&b, " [%s]", d.MessageID)
	}
	if d.Message != "" {
		fmt.Fprintf(&b, ": %s", d.Message)
	}
	if d.Cause != nil {
		fmt.Fprintf(&b, ": %v", d.Cause)
	}
	return b.String()
}

// InvalidParameterError reports a failed local precondition or a request whose
// content the server rejected.
type InvalidParameterError struct {
	Detail
}

// Error implements the error interface
func (e *InvalidParameterError) Error() string { return e.format(KindInvalidParameter) }

// Unwrap returns the underlying cause
func (e *InvalidParameterError) Unwrap() error { return e.Cause }

// UserNotAuthorizedError reports that the server rejected the caller's identity or permissions.
type UserNotAuthorizedError struct {
	Detail
	// UserID is the rejected user
	UserID string
}

// Error implements the error interface
func (e *UserNotAuthorizedError) Error() string { return e.format(KindUserNotAuthorized) }

// Unwrap returns the underlying cause
func (e *UserNotAuthorizedError) Unwrap() error { return e.Cause }

// PropertyServerError reports a server fault, a transport failure or a malformed response.
type PropertyServerError struct {
	Detail
}

// Error implements the error interface
func (e *PropertyServerError) Error() string { return e.format(KindPropertyServer) }

// Unwrap returns the underlying cause
func (e *PropertyServerError) Unwrap() error { return e.Cause }

// ConnectorCheckedError reports that an event connector could not be established.
// It is permanent for the client instance that produced it.
type ConnectorCheckedError struct {
	Detail
}

// Error implements the error interface
func (e *ConnectorCheckedError) Error() string { return e.format(KindConnectorChecked) }

// Unwrap returns the underlying cause
func (e *ConnectorCheckedError) Unwrap() error { return e.Cause }

// NewInvalidParameter builds a local validation failure for the named parameter
func NewInvalidParameter(operation, parameter, format string, args ...any) *InvalidParameterError {
	return &InvalidParameterError{Detail: Detail{
		Operation:  operation,
		Parameter:  parameter,
		Message:    fmt.Sprintf(format, args...),
		UserAction: fmt.Sprintf("Correct the value of %s and retry the request", parameter),
	}}
}

// NewPropertyServer builds a transport or server failure wrapping cause
func NewPropertyServer(operation string, httpCode int, cause error, format string, args ...any) *PropertyServerError {
	return &PropertyServerError{Detail: Detail{
		Operation: operation,
		HTTPCode:  httpCode,
		Message:   fmt.Sprintf(format, args...),
		Cause:     cause,
	}}
}

// NewConnectorChecked builds an event connector failure
func NewConnectorChecked(operation string, cause error, format string, args ...any) *ConnectorCheckedError {
	return &ConnectorCheckedError{Detail: Detail{
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
		Cause:     cause,
	}}
}

// New builds an error of the given kind from a populated Detail.
// KindUnknown is reported as a PropertyServerError.
func New(kind Kind, d Detail) error {
	switch kind {
	case KindInvalidParameter:
		return &InvalidParameterError{Detail: d}
	case KindUserNotAuthorized:
		return &UserNotAuthorizedError{Detail: d}
	case KindConnectorChecked:
		return &ConnectorCheckedError{Detail: d}
	default:
		return &PropertyServerError{Detail: d}
	}
}

// KindOf returns the kind of the first catalog error in err's chain
func KindOf(err error) Kind {
	var (
		ipe *InvalidParameterError
		una *UserNotAuthorizedError
		pse *PropertyServerError
		cce *ConnectorCheckedError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &ipe):
		return KindInvalidParameter
	case errors.As(err, &una):
		return KindUserNotAuthorized
	case errors.As(err, &pse):
		return KindPropertyServer
	case errors.As(err, &cce):
		return KindConnectorChecked
	default:
		return KindUnknown
	}
}

// DetailOf returns the diagnostic detail of the first catalog error in err's chain
func DetailOf(err error) (Detail, bool) {
	var (
		ipe *InvalidParameterError
		una *UserNotAuthorizedError
		pse *PropertyServerError
		cce *ConnectorCheckedError
	)
	switch {
	case errors.As(err, &ipe):
		return ipe.Detail, true
	case errors.As(err, &una):
		return una.Detail, true
	case errors.As(err, &pse):
		return pse.Detail, true
	case errors.As(err, &cce):
		return cce.Detail, true
	default:
		return Detail{}, false
	}
}

// IsInvalidParameter reports whether err is an InvalidParameterError
func IsInvalidParameter(err error) bool { return KindOf(err) == KindInvalidParameter }

// IsUserNotAuthorized reports whether err is a UserNotAuthorizedError
func IsUserNotAuthorized(err error) bool { return KindOf(err) == KindUserNotAuthorized }

// IsPropertyServer reports whether err is a PropertyServerError
func IsPropertyServer(err error) bool { return KindOf(err) == KindPropertyServer }

// IsNotFound reports whether err is the server's answer for an unknown GUID or
// relationship: an InvalidParameterError related to HTTP 404.
func IsNotFound(err error) bool {
	var ipe *InvalidParameterError
	return errors.As(err, &ipe) && ipe.HTTPCode == http.StatusNotFound
}

// KindForStatus maps an HTTP status code to the error kind it represents.
// Successful codes map to KindUnknown.
func KindForStatus(code int) Kind {
	switch {
	case code < http.StatusBadRequest:
		return KindUnknown
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindUserNotAuthorized
	case code < http.StatusInternalServerError:
		return KindInvalidParameter
	default:
		return KindPropertyServer
	}
}

// KindForExceptionClass maps a server exception class name, fully qualified or
// not, to an error kind. Unrecognised names map to KindUnknown.
func KindForExceptionClass(className string) Kind {
	if i := strings.LastIndex(className, "."); i >= 0 {
		className = className[i+1:]
	}
	switch className {
	case "InvalidParameterException":
		return KindInvalidParameter
	case "UserNotAuthorizedException":
		return KindUserNotAuthorized
	case "PropertyServerException":
		return KindPropertyServer
	case "ConnectorCheckedException":
		return KindConnectorChecked
	default:
		return KindUnknown
	}
}
