// Package rules holds the per-slot content checks each domain runs on a
// single extraction result. Checks are pure: they read the result and
// report codes to add or suppress, never mutating their input.
package rules

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Findings is the outcome of a rule check.
type Findings struct {
	Add      []string
	Suppress []string
	Extras   evidence.Extras
}

// Apply removes suppressed codes from reasons, then appends added codes
// that are not already present.
func (f Findings) Apply(reasons []string) []string {
	if len(f.Suppress) > 0 {
		reasons = evidence.Without(reasons, f.Suppress...)
	}
	return evidence.AppendUnique(reasons, f.Add...)
}

// Input is what a check sees of one file.
type Input struct {
	Kind   evidence.FileKind
	Result evidence.ExtractionResult
	Now    time.Time
}

// Check inspects one extraction result.
type Check func(in Input) Findings

// Set is a domain's rule table keyed by slot name.
type Set struct {
	Domain string
	Checks map[string]Check
	// Emits lists every code the checks may add.
	Emits []string

	now func() time.Time
}

// Hook is the per-slot rule contract the extraction coordinator calls.
type Hook interface {
	Check(slot string, kind evidence.FileKind, r evidence.ExtractionResult) Findings
}

// Check runs the rule registered for slot, if any.
func (s *Set) Check(slot string, kind evidence.FileKind, r evidence.ExtractionResult) Findings {
	c, ok := s.Checks[slot]
	if !ok {
		return Findings{}
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	f := c(Input{Kind: kind, Result: r, Now: now()})
	f.Add = evidence.Dedupe(f.Add)
	return f
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Set) WithClock(now func() time.Time) *Set {
	c := *s
	c.now = now
	return &c
}

// Validate confirms every slot the set checks exists in the domain and
// every code it may add is declared there.
func (s *Set) Validate(d *catalog.Domain) error {
	if s.Domain != d.Name {
		return fmt.Errorf("rule set for %q bound to domain %q", s.Domain, d.Name)
	}

	slots := make([]string, 0, len(s.Checks))
	for slot := range s.Checks {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		if _, ok := d.Slot(slot); !ok {
			return fmt.Errorf("rule for unknown slot %q", slot)
		}
	}

	for _, code := range s.Emits {
		if !d.Declares(code) {
			return fmt.Errorf("rule code %s not declared", code)
		}
	}

	return nil
}

// For returns the rule set of a built-in domain.
func For(domain string) (*Set, bool) {
	switch domain {
	case "safety":
		return Safety(), true
	case "compliance":
		return Compliance(), true
	case "esg":
		return ESG(), true
	default:
		return nil, false
	}
}

func onKinds(kinds []evidence.FileKind, c Check) Check {
	return func(in Input) Findings {
		if !slices.Contains(kinds, in.Kind) {
			return Findings{}
		}
		return c(in)
	}
}
