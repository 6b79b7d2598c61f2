package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/SmartChain-HD/AI/internal/aggregate"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/packages"
)

// Submit runs the full pipeline for one package and returns its report.
// Only malformed requests fail; every file-level problem becomes a
// reason code in the report.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*aggregate.Report, error) {
	engine, err := s.registry.Engine(req.Domain)
	if err != nil {
		return nil, err
	}
	period, err := ParsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if req.PackageID == "" {
		return nil, fmt.Errorf("%w: package_id required", ErrInvalidRequest)
	}

	return packages.WithLock(ctx, s.locker, req.PackageID, func(ctx context.Context) (*aggregate.Report, error) {
		hints, err := s.hints(ctx, req)
		if err != nil {
			return nil, err
		}

		report, err := Execute(ctx, s.runtime(engine), Submission{
			PackageID: req.PackageID,
			Period:    period,
			Files:     req.Files,
			Slots:     Assign(hints),
		})
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(
			ctx, "submit complete",
			"package_id", req.PackageID,
			"domain", req.Domain,
			"files", len(req.Files),
			"verdict", report.Verdict,
			"risk_level", report.RiskLevel,
		)
		return report, nil
	})
}

// hints returns the request's hints, or the stored ones when it has none.
func (s *Service) hints(ctx context.Context, req SubmitRequest) ([]evidence.SlotHint, error) {
	if len(req.SlotHints) > 0 {
		return req.SlotHints, nil
	}

	pkg, err := s.store.Get(ctx, req.PackageID)
	if errors.Is(err, packages.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pkg.Domain != req.Domain {
		return nil, fmt.Errorf("%w: %s is %s", packages.ErrDomainMismatch, req.PackageID, pkg.Domain)
	}
	return pkg.Hints, nil
}

func (s *Service) runtime(engine *Engine) *Runtime {
	rt := &Runtime{
		Engine: engine,
		Logger: s.logger.With("domain", engine.Domain.Name),
	}
	if s.cfg.Judge && s.models != nil {
		rt.Judge = s.models
	}
	return rt
}

// Assign maps file ids to hinted slot names. A later hint for the same
// file wins.
func Assign(hints []evidence.SlotHint) map[string]string {
	slots := make(map[string]string, len(hints))
	for _, h := range hints {
		slots[h.FileID] = h.SlotName
	}
	return slots
}
