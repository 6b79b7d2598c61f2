package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/packages"
)

// Preview matches the added files, drops the removed ones, and reports the
// package's slot coverage. A missing package id starts a new package.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	engine, err := s.registry.Engine(req.Domain)
	if err != nil {
		return nil, err
	}
	if _, err := ParsePeriod(req.PeriodStart, req.PeriodEnd); err != nil {
		return nil, err
	}

	id := req.PackageID
	if id == "" {
		id = NewPackageID()
	}

	pkg, err := packages.WithLock(ctx, s.locker, id, func(ctx context.Context) (*packages.Package, error) {
		existing, err := s.store.Get(ctx, id)
		switch {
		case errors.Is(err, packages.ErrNotFound):
		case err != nil:
			return nil, err
		case existing.Domain != req.Domain:
			return nil, fmt.Errorf("%w: %s is %s", packages.ErrDomainMismatch, id, existing.Domain)
		}

		if existing != nil && len(req.RemovedFileIDs) > 0 {
			if _, err := s.store.RemoveFiles(ctx, id, req.RemovedFileIDs); err != nil {
				return nil, err
			}
		}

		hints := make([]evidence.SlotHint, 0, len(req.AddedFiles))
		for _, f := range req.AddedFiles {
			if h, ok := engine.Matcher.Match(ctx, f); ok {
				hints = append(hints, h)
			}
		}

		return s.store.Upsert(ctx, id, req.Domain, hints)
	})
	if err != nil {
		return nil, err
	}

	statuses, missing := Coverage(engine.Domain, pkg.Hints)

	s.logger.InfoContext(
		ctx, "preview complete",
		"package_id", id,
		"domain", req.Domain,
		"added", len(req.AddedFiles),
		"removed", len(req.RemovedFileIDs),
		"missing", len(missing),
	)

	return &PreviewResponse{
		PackageID:            id,
		SlotHints:            pkg.Hints,
		RequiredSlotStatus:   statuses,
		MissingRequiredSlots: missing,
	}, nil
}

// Coverage reports every catalog slot as submitted or missing, and lists
// the required slots without a hint.
func Coverage(d *catalog.Domain, hints []evidence.SlotHint) ([]SlotStatus, []string) {
	files := make(map[string][]string)
	for _, h := range hints {
		files[h.SlotName] = append(files[h.SlotName], h.FileID)
	}

	statuses := make([]SlotStatus, 0, len(d.Slots))
	missing := []string{}
	for _, slot := range d.Slots {
		st := SlotStatus{
			SlotName:    slot.Name,
			DisplayName: slot.DisplayName,
			Required:    slot.Required,
			Status:      StatusSubmitted,
			FileIDs:     files[slot.Name],
		}
		if len(st.FileIDs) == 0 {
			st.Status = StatusMissing
			st.FileIDs = []string{}
			if slot.Required {
				missing = append(missing, slot.Name)
			}
		}
		statuses = append(statuses, st)
	}

	return statuses, missing
}
