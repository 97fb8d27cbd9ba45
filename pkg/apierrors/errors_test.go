package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "plain error", err: errors.New("boom"), want: KindUnknown},
		{name: "invalid parameter", err: NewInvalidParameter("op", "userId", "blank"), want: KindInvalidParameter},
		{name: "not authorized", err: &UserNotAuthorizedError{UserID: "bob"}, want: KindUserNotAuthorized},
		{name: "property server", err: NewPropertyServer("op", 500, nil, "down"), want: KindPropertyServer},
		{name: "connector", err: NewConnectorChecked("op", nil, "no connector"), want: KindConnectorChecked},
		{
			name: "wrapped invalid parameter",
			err:  fmt.Errorf("creating license: %w", NewInvalidParameter("op", "guid", "blank")),
			want: KindInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindsAreMutuallyExclusive(t *testing.T) {
	t.Parallel()

	errs := []error{
		NewInvalidParameter("op", "p", "x"),
		&UserNotAuthorizedError{},
		NewPropertyServer("op", 0, nil, "x"),
	}
	for _, err := range errs {
		count := 0
		for _, is := range []func(error) bool{IsInvalidParameter, IsUserNotAuthorized, IsPropertyServer} {
			if is(err) {
				count++
			}
		}
		assert.Equal(t, 1, count, "error %T matched %d kinds", err, count)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	notFound := New(KindInvalidParameter, Detail{HTTPCode: http.StatusNotFound})
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(fmt.Errorf("clear: %w", notFound)))

	badRequest := New(KindInvalidParameter, Detail{HTTPCode: http.StatusBadRequest})
	assert.False(t, IsNotFound(badRequest))

	serverFault := New(KindPropertyServer, Detail{HTTPCode: http.StatusNotFound})
	assert.False(t, IsNotFound(serverFault))
}

func TestKindForStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUnknown, KindForStatus(http.StatusOK))
	assert.Equal(t, KindInvalidParameter, KindForStatus(http.StatusBadRequest))
	assert.Equal(t, KindInvalidParameter, KindForStatus(http.StatusNotFound))
	assert.Equal(t, KindInvalidParameter, KindForStatus(http.StatusConflict))
	assert.Equal(t, KindUserNotAuthorized, KindForStatus(http.StatusUnauthorized))
	assert.Equal(t, KindUserNotAuthorized, KindForStatus(http.StatusForbidden))
	assert.Equal(t, KindPropertyServer, KindForStatus(http.StatusInternalServerError))
	assert.Equal(t, KindPropertyServer, KindForStatus(http.StatusServiceUnavailable))
}

func TestKindForExceptionClass(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindInvalidParameter,
		KindForExceptionClass("org.odpi.openmetadata.frameworks.connectors.ffdc.InvalidParameterException"))
	assert.Equal(t, KindUserNotAuthorized, KindForExceptionClass("UserNotAuthorizedException"))
	assert.Equal(t, KindPropertyServer, KindForExceptionClass("x.PropertyServerException"))
	assert.Equal(t, KindUnknown, KindForExceptionClass("java.lang.NullPointerException"))
	assert.Equal(t, KindUnknown, KindForExceptionClass(""))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := New(KindPropertyServer, Detail{
		Operation: "CreateReferenceable",
		MessageID: "OMAG-REST-503-001",
		Message:   "server unreachable",
		Cause:     cause,
	})

	assert.Equal(t,
		"PropertyServerException in CreateReferenceable [OMAG-REST-503-001]: server unreachable: connection refused",
		err.Error())
	require.ErrorIs(t, err, cause)

	detail, ok := DetailOf(err)
	require.True(t, ok)
	assert.Equal(t, "CreateReferenceable", detail.Operation)

	_, ok = DetailOf(errors.New("other"))
	assert.False(t, ok)
}
