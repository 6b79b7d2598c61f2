package pipeline

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/crosscheck"
	"github.com/SmartChain-HD/AI/internal/extraction"
	"github.com/SmartChain-HD/AI/internal/matcher"
	"github.com/SmartChain-HD/AI/internal/rules"
)

// Engine bundles everything one domain needs to run a submission.
type Engine struct {
	Domain    *catalog.Domain
	Matcher   *matcher.Matcher
	Rules     *rules.Set
	Checks    *crosscheck.Suite
	Extractor *extraction.Coordinator
}

// Registry maps domain names to engines. It is built once at startup and
// read-only afterwards.
type Registry struct {
	engines map[string]*Engine
	names   []string
}

// NewRegistry builds an engine for every catalog domain. It fails when a
// domain has no rule set or cross-check suite, or when either emits a
// reason code the catalog does not declare.
func NewRegistry(
	cat *catalog.Registry,
	collab extraction.Collaborators,
	models Models,
	cfg Config,
	limiter *rate.Limiter,
	logger *slog.Logger,
) (*Registry, error) {
	r := &Registry{engines: make(map[string]*Engine)}

	for _, name := range cat.Names() {
		d, err := cat.Domain(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
		}

		set, ok := rules.For(name)
		if !ok {
			return nil, fmt.Errorf("%w: no rule set for domain %q", ErrInvalidRegistry, name)
		}
		if err := set.Validate(d); err != nil {
			return nil, fmt.Errorf("%w: %s rules: %w", ErrInvalidRegistry, name, err)
		}

		suite, ok := crosscheck.For(name)
		if !ok {
			return nil, fmt.Errorf("%w: no cross-check suite for domain %q", ErrInvalidRegistry, name)
		}
		if err := suite.Validate(d); err != nil {
			return nil, fmt.Errorf("%w: %s cross-checks: %w", ErrInvalidRegistry, name, err)
		}

		var fallback matcher.Classifier
		dc := collab
		if models != nil {
			if cfg.Fallback {
				fallback = models.Classifier(name)
			}
			dc.Enricher = models.Enricher(name)
		}

		r.engines[name] = &Engine{
			Domain:    d,
			Matcher:   matcher.New(d, fallback, logger),
			Rules:     set,
			Checks:    suite,
			Extractor: extraction.New(d, set, dc, cfg.extraction(), limiter, logger),
		}
		r.names = append(r.names, name)
	}

	if len(r.engines) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidRegistry)
	}

	return r, nil
}

// Engine returns the engine for domain.
func (r *Registry) Engine(domain string) (*Engine, error) {
	e, ok := r.engines[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDomain, domain)
	}
	return e, nil
}

// Domains returns the registered domain names in catalog order.
func (r *Registry) Domains() []string {
	return r.names
}
