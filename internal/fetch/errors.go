package fetch

import (
	"errors"
	"net/http"
)

var (
	ErrFetchFailed       = errors.New("fetch failed")
	ErrUnsupportedScheme = errors.New("unsupported storage scheme")
	ErrNotFound          = errors.New("object not found")
	ErrTooLarge          = errors.New("object exceeds size limit")
)

// MapHTTPStatus maps fetch errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnsupportedScheme) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrFetchFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
