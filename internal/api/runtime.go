package api

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/SmartChain-HD/AI/internal/agents"
	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/internal/detector"
	"github.com/SmartChain-HD/AI/internal/extraction"
	"github.com/SmartChain-HD/AI/internal/extractors"
	"github.com/SmartChain-HD/AI/internal/fetch"
	"github.com/SmartChain-HD/AI/internal/infrastructure"
	"github.com/SmartChain-HD/AI/pkg/pagination"
)

// Runtime extends Infrastructure with the collaborators the pipeline calls.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Catalog       *catalog.Registry
	Collaborators extraction.Collaborators
	Limiter       *rate.Limiter

	// Agents is nil when no stage uses a model.
	Agents *agents.Client
}

// NewRuntime creates an API runtime with a module-scoped logger and builds
// the fetch sources, extractors, and optional model and detector clients.
func NewRuntime(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	rt := &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Packages:  infra.Packages,
			Locker:    infra.Locker,
		},
		Pagination: cfg.API.Pagination,
		Catalog:    cat,
	}

	if cfg.Pipeline.RateLimit > 0 {
		rt.Limiter = rate.NewLimiter(rate.Limit(cfg.Pipeline.RateLimit), cfg.Pipeline.RateBurst)
	}

	var ocr extractors.Recognizer
	if cfg.Pipeline.UsesModels() {
		rt.Agents = agents.New(agents.NewModel(cfg.Agent), rt.Limiter, logger)
		ocr = rt.Agents
	}

	fetcher, err := newFetcher(ctx, cfg, rt)
	if err != nil {
		return nil, err
	}

	rt.Collaborators = extraction.Collaborators{
		Fetcher:   fetcher,
		Documents: extractors.NewDocuments(ocr, logger),
		Tables:    extractors.NewTables(logger),
		Images:    extractors.NewImages(ocr),
	}

	if cfg.Detector.Enabled() {
		rt.Collaborators.Detector = detector.New(
			cfg.Detector.Endpoint,
			&http.Client{Timeout: cfg.Detector.TimeoutDuration()},
			logger,
		)
	}

	return rt, nil
}

func newFetcher(ctx context.Context, cfg *config.Config, rt *Runtime) (*fetch.Fetcher, error) {
	f := fetch.New(cfg.Fetch.MaxSizeBytes(), rt.Logger)

	f.Register(fetch.NewLocal(cfg.Fetch.LocalRoot), "file")
	f.Register(fetch.NewHTTP(&http.Client{Timeout: cfg.Fetch.HTTPTimeoutDuration()}), "http", "https")

	if rt.Storage != nil {
		f.Register(fetch.NewBlob(rt.Storage), "azblob")
	}

	if cfg.Fetch.S3Enabled {
		src, err := fetch.NewS3FromEnv(ctx, cfg.Fetch.S3Region)
		if err != nil {
			return nil, fmt.Errorf("s3 source: %w", err)
		}
		f.Register(src, "s3")
	}

	if cfg.Fetch.GCSEnabled {
		src, err := fetch.NewGCSFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs source: %w", err)
		}
		f.Register(src, "gs")

		rt.Lifecycle.OnShutdown(func() {
			<-rt.Lifecycle.Context().Done()
			if err := src.Close(); err != nil {
				rt.Logger.Error("gcs client close failed", "error", err)
			}
		})
	}

	rt.Logger.Info("fetch sources registered", "schemes", f.Schemes())
	return f, nil
}
