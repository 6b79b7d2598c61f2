package packages

import (
	"errors"
	"net/http"
)

// Domain errors for package operations.
var (
	ErrNotFound       = errors.New("package not found")
	ErrDuplicate      = errors.New("package already exists")
	ErrDomainMismatch = errors.New("package belongs to another domain")
	ErrLockTimeout    = errors.New("package is locked by another writer")
	ErrUnknownBackend = errors.New("unknown store backend")
)

// MapHTTPStatus maps package errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrDomainMismatch) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrLockTimeout) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
