package pipeline

import (
	"errors"
	"net/http"

	"github.com/SmartChain-HD/AI/internal/fetch"
	"github.com/SmartChain-HD/AI/internal/packages"
	"github.com/SmartChain-HD/AI/internal/triage"
)

var (
	ErrUnsupportedDomain = errors.New("unsupported domain")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidRegistry   = errors.New("invalid domain registry")
)

// MapHTTPStatus maps pipeline errors, and the package store errors they
// wrap, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedDomain), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, triage.ErrUnsupportedFileType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fetch.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return packages.MapHTTPStatus(err)
	}
}
