// Package apperr defines the error kinds shared by the service layer and
// the HTTP controllers. Services wrap one of the sentinel kinds with
// fmt.Errorf("...: %w", kind); controllers classify with errors.Is and map
// the kind to a status code through HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input that fails shape or range checks.
	ErrValidation = errors.New("validation failed")
	// ErrPermission marks a caller lacking the required permission.
	ErrPermission = errors.New("permission denied")
	// ErrState marks an operation invalid for the entity's current status.
	ErrState = errors.New("invalid state")
	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGateway marks an upstream transcription/summarization failure.
	ErrGateway = errors.New("gateway error")
	// ErrConflict marks a write lost to a concurrent writer.
	ErrConflict = errors.New("conflict")
)

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

func Validationf(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

func Permissionf(format string, args ...interface{}) error {
	return wrap(ErrPermission, format, args...)
}

func Statef(format string, args ...interface{}) error {
	return wrap(ErrState, format, args...)
}

func NotFoundf(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

func Gatewayf(format string, args ...interface{}) error {
	return wrap(ErrGateway, format, args...)
}

func Conflictf(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrState):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
