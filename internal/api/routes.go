package api

import (
	"net/http"

	"github.com/SmartChain-HD/AI/internal/config"
	"github.com/SmartChain-HD/AI/pkg/openapi"
	"github.com/SmartChain-HD/AI/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	run := domain.Pipeline.Handler(cfg.API.MaxBodySizeBytes()).Routes()
	run.Children = append(run.Children, domain.Packages.Routes())

	routes.Register(
		mux,
		run,
		domain.Prompts.Routes(),
	)

	spec, err := openapi.MarshalJSON(NewSpec(cfg, domain.Pipeline.Registry().Domains()))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
