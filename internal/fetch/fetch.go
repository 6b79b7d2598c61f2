// Package fetch resolves storage locators to file bytes. A locator is a
// bare path or a URI whose scheme selects a registered Source: file,
// http, https, azblob, s3, or gs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
)

// DefaultMaxBytes bounds a single fetched object.
const DefaultMaxBytes = 50 << 20

// Source opens the object a parsed locator names.
type Source interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

func (f SourceFunc) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	return f(ctx, u)
}

// Fetcher dispatches locators to sources by scheme.
type Fetcher struct {
	sources  map[string]Source
	maxBytes int64
	logger   *slog.Logger
}

// New creates a Fetcher with no sources. maxBytes <= 0 selects
// DefaultMaxBytes.
func New(maxBytes int64, logger *slog.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		sources:  make(map[string]Source),
		maxBytes: maxBytes,
		logger:   logger.With("system", "fetch"),
	}
}

// Register binds src to each scheme, replacing any earlier binding.
func (f *Fetcher) Register(src Source, schemes ...string) {
	for _, s := range schemes {
		f.sources[strings.ToLower(s)] = src
	}
}

// Schemes returns the registered schemes.
func (f *Fetcher) Schemes() []string {
	out := make([]string, 0, len(f.sources))
	for s := range f.sources {
		out = append(out, s)
	}
	return out
}

// Fetch reads the object at uri. Every failure wraps ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	src, ok := f.sources[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrFetchFailed, ErrUnsupportedScheme, u.Scheme)
	}

	rc, err := src.Open(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, redact(u), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read: %w", ErrFetchFailed, redact(u), err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, redact(u), ErrTooLarge)
	}

	f.logger.DebugContext(ctx, "object fetched", "scheme", u.Scheme, "bytes", len(data))
	return data, nil
}

// Parse turns a locator into a URL. Bare paths become file URLs.
func Parse(uri string) (*url.URL, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty locator")
	}
	if !strings.Contains(uri, "://") {
		return &url.URL{Scheme: "file", Path: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse locator: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// bucketKey splits scheme://bucket/key locators.
func bucketKey(u *url.URL) (string, string, error) {
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("locator must be %s://bucket/key", u.Scheme)
	}
	return u.Host, key, nil
}

func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}
