package packages_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/packages"
	"github.com/SmartChain-HD/AI/pkg/pagination"
	"github.com/SmartChain-HD/AI/pkg/routes"
)

func newServer(t *testing.T) (*http.ServeMux, packages.Store) {
	t.Helper()

	store := packages.NewMemory()
	ctx := context.Background()
	if _, err := store.Upsert(ctx, "PKG_A", "esg", []evidence.SlotHint{hint("f1", "esg.ethics.code")}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := store.Upsert(ctx, "PKG_B", "safety", nil); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := packages.NewHandler(store, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux, store
}

func TestHandlerFind(t *testing.T) {
	mux, _ := newServer(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/packages/PKG_A", http.StatusOK},
		{"/packages/PKG_X", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var p packages.Package
			if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.ID != "PKG_A" || len(p.Hints) != 1 {
				t.Errorf("GET %s = %+v", tt.path, p)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	mux, _ := newServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packages?domain=safety", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[packages.Package]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].ID != "PKG_B" {
		t.Errorf("list = %+v, want only PKG_B", result)
	}
}
