// Package validators provides the precondition checks applied to catalog
// request parameters before any request is sent.
package validators

import (
	"strings"

	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

const (
	// UserIDParameterName is the parameter name reported for user id failures
	UserIDParameterName = "userId"
	// StartFromParameterName is the parameter name reported for paging offset failures
	StartFromParameterName = "startFrom"
	// PageSizeParameterName is the parameter name reported for page size failures
	PageSizeParameterName = "pageSize"
)

// ValidateUserID fails when userID is blank
func ValidateUserID(operation, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apierrors.NewInvalidParameter(operation, UserIDParameterName,
			"the user identifier passed on the %s operation is null or blank", operation)
	}
	return nil
}

// ValidateGUID fails when guid is blank. Existence is checked by the server.
func ValidateGUID(operation, guid, parameterName string) error {
	if strings.TrimSpace(guid) == "" {
		return apierrors.NewInvalidParameter(operation, parameterName,
			"the unique identifier (guid) passed on the %s parameter of the %s operation is null or blank",
			parameterName, operation)
	}
	return nil
}

// ValidateName fails when a required string is blank
func ValidateName(operation, name, parameterName string) error {
	if strings.TrimSpace(name) == "" {
		return apierrors.NewInvalidParameter(operation, parameterName,
			"the name passed on the %s parameter of the %s operation is null or blank",
			parameterName, operation)
	}
	return nil
}

// ValidateObject fails when a required object was not supplied
func ValidateObject(operation string, present bool, parameterName string) error {
	if !present {
		return apierrors.NewInvalidParameter(operation, parameterName,
			"the %s parameter of the %s operation is null", parameterName, operation)
	}
	return nil
}

// ValidatePaging checks the paging window of a list request and returns the
// page size to send. A page size of zero means "no explicit limit" and
// resolves to defaultPageSize; positive page sizes are returned unchanged and
// clamped by the server.
func ValidatePaging(operation string, startFrom, pageSize, defaultPageSize int) (int, error) {
	if startFrom < 0 {
		return 0, apierrors.NewInvalidParameter(operation, StartFromParameterName,
			"the starting point for the results %d passed on the %s operation is negative",
			startFrom, operation)
	}
	if pageSize < 0 {
		return 0, apierrors.NewInvalidParameter(operation, PageSizeParameterName,
			"the page size %d passed on the %s operation is negative", pageSize, operation)
	}
	if pageSize == 0 {
		return defaultPageSize, nil
	}
	return pageSize, nil
}
