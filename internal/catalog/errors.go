package catalog

import "errors"

var (
	// ErrUnknownDomain indicates a domain name with no registered catalog.
	ErrUnknownDomain = errors.New("unsupported domain")
	// ErrInvalidCatalog indicates a catalog failed startup validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
