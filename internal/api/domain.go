package api

import (
	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/internal/packages"
	"github.com/SmartChain-HD/AI/internal/pipeline"
	"github.com/SmartChain-HD/AI/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Pipeline *pipeline.Service
	Packages *packages.Handler
	Prompts  *prompts.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	pcfg := pipeline.Config{
		FileTimeout: cfg.Pipeline.FetchTimeoutDuration(),
		MaxWorkers:  cfg.Pipeline.MaxWorkers,
		Fallback:    cfg.Pipeline.Fallback,
		Enrich:      cfg.Pipeline.Enrich,
		Judge:       cfg.Pipeline.Judge,
	}

	var models pipeline.Models
	if runtime.Agents != nil {
		models = runtime.Agents
	}

	registry, err := pipeline.NewRegistry(
		runtime.Catalog,
		runtime.Collaborators,
		models,
		pcfg,
		runtime.Limiter,
		runtime.Logger,
	)
	if err != nil {
		return nil, err
	}

	svc := pipeline.New(
		registry,
		runtime.Packages,
		runtime.Locker,
		models,
		pcfg,
		runtime.Logger,
	)

	return &Domain{
		Pipeline: svc,
		Packages: packages.NewHandler(runtime.Packages, runtime.Logger, runtime.Pagination),
		Prompts:  prompts.NewHandler(runtime.Logger),
	}, nil
}
