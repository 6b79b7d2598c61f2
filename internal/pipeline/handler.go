package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/pkg/handlers"
	"github.com/SmartChain-HD/AI/pkg/routes"
)

// CatalogView is the public description of one domain's checklist.
type CatalogView struct {
	Domain      string            `json:"domain"`
	Slots       []catalog.Slot    `json:"slots"`
	ReasonCodes map[string]string `json:"reason_codes"`
}

// Catalog returns the checklist of domain.
func (s *Service) Catalog(domain string) (*CatalogView, error) {
	engine, err := s.registry.Engine(domain)
	if err != nil {
		return nil, err
	}

	d := engine.Domain
	return &CatalogView{
		Domain:      d.Name,
		Slots:       d.Slots,
		ReasonCodes: d.ReasonCodes,
	}, nil
}

// Handler provides the HTTP endpoints of the pipeline.
type Handler struct {
	svc     *Service
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler over svc. Request bodies larger than
// maxBody bytes are rejected.
func NewHandler(svc *Service, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		svc:     svc,
		logger:  logger.With("handler", "run"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for the run endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/run",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/preview", Handler: h.Preview},
			{Method: "POST", Pattern: "/submit", Handler: h.Submit},
			{Method: "GET", Pattern: "/catalog/{domain}", Handler: h.Catalog},
		},
	}
}

// Preview matches added files and returns the package's slot coverage.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := DecodePreview(body)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	resp, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Submit runs the pipeline over a package and returns its report.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := DecodeSubmit(body)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	report, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Catalog returns the slots and reason codes of one domain.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Catalog(r.PathValue("domain"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
