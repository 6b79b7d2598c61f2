// Package packages stores the slot hints accumulated for a submission
// package between preview calls. Every mutation of one package runs under
// that package's lock, so each package id has a single writer at a time.
package packages

import (
	"context"
	"slices"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/pkg/pagination"
)

// Package is the persisted state of one submission package.
type Package struct {
	ID        string              `json:"package_id"`
	Domain    string              `json:"domain"`
	Hints     []evidence.SlotHint `json:"slot_hints"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Store persists packages. Implementations are safe for concurrent use;
// callers serialize writes to one package through a Locker.
type Store interface {
	Get(ctx context.Context, id string) (*Package, error)

	// Upsert creates the package or merges hints into it. A hint replaces
	// any earlier hint for the same file id.
	Upsert(ctx context.Context, id, domain string, hints []evidence.SlotHint) (*Package, error)

	// RemoveFiles drops the hints of the given file ids.
	RemoveFiles(ctx context.Context, id string, fileIDs []string) (*Package, error)

	List(ctx context.Context, page pagination.PageRequest, domain string) (*pagination.PageResult[Package], error)
}

// MergeHints returns existing with each added hint applied in order.
// A hint for a known file id replaces it in place; new file ids append.
func MergeHints(existing, added []evidence.SlotHint) []evidence.SlotHint {
	out := slices.Clone(existing)
	for _, h := range added {
		i := slices.IndexFunc(out, func(e evidence.SlotHint) bool { return e.FileID == h.FileID })
		if i >= 0 {
			out[i] = h
			continue
		}
		out = append(out, h)
	}
	if out == nil {
		out = []evidence.SlotHint{}
	}
	return out
}

// RemoveHints returns hints without those for the given file ids.
func RemoveHints(hints []evidence.SlotHint, fileIDs []string) []evidence.SlotHint {
	out := make([]evidence.SlotHint, 0, len(hints))
	for _, h := range hints {
		if !slices.Contains(fileIDs, h.FileID) {
			out = append(out, h)
		}
	}
	return out
}
