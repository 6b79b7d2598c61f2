package packages

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/pkg/pagination"
	"github.com/SmartChain-HD/AI/pkg/query"
	"github.com/SmartChain-HD/AI/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "packages", "p").
	Project("id", "ID").
	Project("domain", "Domain").
	Project("hints", "Hints").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

const (
	lockRow = `SELECT domain, hints FROM packages WHERE id = $1 FOR UPDATE`

	upsertRow = `
		INSERT INTO packages (id, domain, hints)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET hints = EXCLUDED.hints, updated_at = now()
		RETURNING id, domain, hints, created_at, updated_at`

	updateHints = `
		UPDATE packages SET hints = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, domain, hints, created_at, updated_at`
)

type postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgres creates a store backed by the packages table.
func NewPostgres(db *sql.DB, logger *slog.Logger) Store {
	return &postgres{
		db:     db,
		logger: logger.With("system", "packages"),
	}
}

func (s *postgres) Get(ctx context.Context, id string) (*Package, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanPackage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (s *postgres) Upsert(ctx context.Context, id, domain string, hints []evidence.SlotHint) (*Package, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Package, error) {
		current, err := repository.QueryOne(ctx, tx, lockRow, []any{id}, scanLocked)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			current = Package{Domain: domain}
		case err != nil:
			return Package{}, err
		case current.Domain != domain:
			return Package{}, fmt.Errorf("%w: %s is %s", ErrDomainMismatch, id, current.Domain)
		}

		data, err := json.Marshal(MergeHints(current.Hints, hints))
		if err != nil {
			return Package{}, err
		}
		return repository.QueryOne(ctx, tx, upsertRow, []any{id, domain, data}, scanPackage)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("package upserted", "package_id", id, "hints", len(p.Hints))
	return &p, nil
}

func (s *postgres) RemoveFiles(ctx context.Context, id string, fileIDs []string) (*Package, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Package, error) {
		current, err := repository.QueryOne(ctx, tx, lockRow, []any{id}, scanLocked)
		if err != nil {
			return Package{}, err
		}

		data, err := json.Marshal(RemoveHints(current.Hints, fileIDs))
		if err != nil {
			return Package{}, err
		}
		return repository.QueryOne(ctx, tx, updateHints, []any{id, data}, scanPackage)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("package files removed", "package_id", id, "removed", len(fileIDs))
	return &p, nil
}

func (s *postgres) List(ctx context.Context, page pagination.PageRequest, domain string) (*pagination.PageResult[Package], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ID")

	if domain != "" {
		qb.WhereEquals("Domain", domain)
	}
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count packages: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	pkgs, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanPackage)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}

	result := pagination.NewPageResult(pkgs, total, page.Page, page.PageSize)
	return &result, nil
}

func scanPackage(s repository.Scanner) (Package, error) {
	var p Package
	var hints []byte
	if err := s.Scan(&p.ID, &p.Domain, &hints, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Package{}, err
	}
	if err := decodeHints(hints, &p); err != nil {
		return Package{}, err
	}
	return p, nil
}

func scanLocked(s repository.Scanner) (Package, error) {
	var p Package
	var hints []byte
	if err := s.Scan(&p.Domain, &hints); err != nil {
		return Package{}, err
	}
	if err := decodeHints(hints, &p); err != nil {
		return Package{}, err
	}
	return p, nil
}

func decodeHints(data []byte, p *Package) error {
	p.Hints = []evidence.SlotHint{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &p.Hints); err != nil {
		return fmt.Errorf("decode hints of %s: %w", p.ID, err)
	}
	return nil
}
