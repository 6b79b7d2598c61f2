package packages

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/pkg/pagination"
)

type memory struct {
	mu   sync.RWMutex
	pkgs map[string]*Package
	now  func() time.Time
}

// NewMemory creates an in-process store. Contents are lost on restart.
func NewMemory() Store {
	return &memory{
		pkgs: make(map[string]*Package),
		now:  time.Now,
	}
}

func (m *memory) Get(ctx context.Context, id string) (*Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pkgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePackage(p), nil
}

func (m *memory) Upsert(ctx context.Context, id, domain string, hints []evidence.SlotHint) (*Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	p, ok := m.pkgs[id]
	if !ok {
		p = &Package{ID: id, Domain: domain, CreatedAt: now}
		m.pkgs[id] = p
	} else if p.Domain != domain {
		return nil, fmt.Errorf("%w: %s is %s", ErrDomainMismatch, id, p.Domain)
	}

	p.Hints = MergeHints(p.Hints, hints)
	p.UpdatedAt = now
	return clonePackage(p), nil
}

func (m *memory) RemoveFiles(ctx context.Context, id string, fileIDs []string) (*Package, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pkgs[id]
	if !ok {
		return nil, ErrNotFound
	}

	p.Hints = RemoveHints(p.Hints, fileIDs)
	p.UpdatedAt = m.now().UTC()
	return clonePackage(p), nil
}

func (m *memory) List(ctx context.Context, page pagination.PageRequest, domain string) (*pagination.PageResult[Package], error) {
	m.mu.RLock()
	matched := make([]Package, 0, len(m.pkgs))
	for _, p := range m.pkgs {
		if domain != "" && p.Domain != domain {
			continue
		}
		if page.Search != nil && !strings.Contains(strings.ToLower(p.ID), strings.ToLower(*page.Search)) {
			continue
		}
		matched = append(matched, *clonePackage(p))
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Package) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	start := min(page.Offset(), len(matched))
	end := min(start+page.PageSize, len(matched))

	result := pagination.NewPageResult(matched[start:end], len(matched), page.Page, page.PageSize)
	return &result, nil
}

func clonePackage(p *Package) *Package {
	c := *p
	c.Hints = slices.Clone(p.Hints)
	if c.Hints == nil {
		c.Hints = []evidence.SlotHint{}
	}
	return &c
}
