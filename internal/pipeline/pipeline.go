// Package pipeline runs the two submission operations. Preview matches
// added files to slots and accumulates the hints under the package id.
// Submit triages, extracts, and judges a package's files and returns the
// aggregated report. Both hold the package lock for their whole run.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SmartChain-HD/AI/internal/aggregate"
	"github.com/SmartChain-HD/AI/internal/extraction"
	"github.com/SmartChain-HD/AI/internal/matcher"
	"github.com/SmartChain-HD/AI/internal/packages"
)

// PackagePrefix starts every generated package id.
const PackagePrefix = "PKG_"

// Models supplies the optional language-model collaborators per domain.
type Models interface {
	Classifier(domain string) matcher.Classifier
	Enricher(domain string) extraction.Enricher
	Judge(ctx context.Context, domain string, report *aggregate.Report) (string, error)
}

// Config holds the runtime settings of the pipeline.
type Config struct {
	FileTimeout time.Duration
	MaxWorkers  int
	Fallback    bool
	Enrich      bool
	Judge       bool
}

func (c Config) extraction() extraction.Config {
	return extraction.Config{
		FileTimeout: c.FileTimeout,
		MaxWorkers:  c.MaxWorkers,
		Enrich:      c.Enrich,
	}
}

// Service executes previews and submissions against the package store.
type Service struct {
	registry *Registry
	store    packages.Store
	locker   packages.Locker
	models   Models
	cfg      Config
	logger   *slog.Logger
}

// New creates a Service. models may be nil, which disables the judge.
func New(
	registry *Registry,
	store packages.Store,
	locker packages.Locker,
	models Models,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		registry: registry,
		store:    store,
		locker:   locker,
		models:   models,
		cfg:      cfg,
		logger:   logger.With("system", "pipeline"),
	}
}

// Registry returns the domain registry the service runs against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Handler returns the HTTP handler for the run endpoints.
func (s *Service) Handler(maxBody int64) *Handler {
	return NewHandler(s, s.logger, maxBody)
}

// NewPackageID returns PKG_ followed by 12 uppercase hex digits.
func NewPackageID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return PackagePrefix + strings.ToUpper(id[:12])
}
