package packages

import (
	"log/slog"
	"net/http"

	"github.com/SmartChain-HD/AI/pkg/handlers"
	"github.com/SmartChain-HD/AI/pkg/pagination"
	"github.com/SmartChain-HD/AI/pkg/routes"
)

// Handler provides read-only HTTP endpoints over stored packages.
type Handler struct {
	store      Store
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over store.
func NewHandler(store Store, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		store:      store,
		logger:     logger.With("handler", "packages"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for package endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/packages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns a page of packages, optionally filtered by the domain query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.store.List(r.Context(), page, r.URL.Query().Get("domain"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns one package with its accumulated slot hints.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}
