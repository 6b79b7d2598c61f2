// Package catalog holds the static slot definitions and reason-code tables
// for every supported domain. Catalogs are embedded YAML, parsed and
// validated once at startup, and read-only afterwards.
package catalog

import (
	"regexp"
	"slices"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Policy selects how filenames are scored against a domain's slots.
type Policy string

const (
	// PolicyWeighted scores keyword overlaps and keeps the best slot.
	PolicyWeighted Policy = "weighted"
	// PolicyPattern returns the first slot whose pattern matches.
	PolicyPattern Policy = "pattern"
)

// Penalty subtracts points from a slot's score when competing signals are present.
type Penalty struct {
	Points  int      `yaml:"points"`
	Signals []string `yaml:"signals"`
}

// Slot is one expected document type in a domain checklist.
type Slot struct {
	Name            string              `yaml:"name" json:"name"`
	DisplayName     string              `yaml:"display_name" json:"display_name"`
	Required        bool                `yaml:"required" json:"required"`
	Kinds           []evidence.FileKind `yaml:"kinds" json:"kinds"`
	DomainSignals   []string            `yaml:"domain_signals" json:"domain_signals,omitempty"`
	PurposeSignals  []string            `yaml:"purpose_signals" json:"purpose_signals,omitempty"`
	BoostSignals    []string            `yaml:"boost_signals" json:"boost_signals,omitempty"`
	Pattern         string              `yaml:"pattern" json:"pattern,omitempty"`
	Penalty         *Penalty            `yaml:"penalty" json:"-"`
	ExpectedHeaders []string            `yaml:"expected_headers" json:"expected_headers,omitempty"`

	regex *regexp.Regexp
}

// Regex returns the compiled pattern, or nil when the slot has none.
func (s *Slot) Regex() *regexp.Regexp {
	return s.regex
}

// Accepts reports whether the slot accepts files of the given kind.
// A slot with no declared kinds accepts every kind.
func (s *Slot) Accepts(kind evidence.FileKind) bool {
	return len(s.Kinds) == 0 || slices.Contains(s.Kinds, kind)
}

// Confidence is the fixed confidence a pattern match reports.
type Confidence struct {
	Required float64 `yaml:"required"`
	Optional float64 `yaml:"optional"`
}

// Domain is the full catalog of one domain.
type Domain struct {
	Name        string            `yaml:"name"`
	Policy      Policy            `yaml:"policy"`
	MinScore    int               `yaml:"min_score"`
	PairBonus   int               `yaml:"pair_bonus"`
	Confidence  Confidence        `yaml:"confidence"`
	ReasonCodes map[string]string `yaml:"reason_codes"`
	Slots       []Slot            `yaml:"slots"`

	index map[string]int
}

// Slot returns the slot definition with the given name.
func (d *Domain) Slot(name string) (*Slot, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.Slots[i], true
}

// SlotNames returns every slot name in catalog order.
func (d *Domain) SlotNames() []string {
	names := make([]string, len(d.Slots))
	for i, s := range d.Slots {
		names[i] = s.Name
	}
	return names
}

// RequiredSlots returns the names of required slots in catalog order.
func (d *Domain) RequiredSlots() []string {
	var names []string
	for _, s := range d.Slots {
		if s.Required {
			names = append(names, s.Name)
		}
	}
	return names
}

// DisplayName returns the slot's display name, or "" for unknown slots.
func (d *Domain) DisplayName(slot string) string {
	if s, ok := d.Slot(slot); ok {
		return s.DisplayName
	}
	return ""
}

// Declares reports whether code is in the domain's reason-code table.
func (d *Domain) Declares(code string) bool {
	_, ok := d.ReasonCodes[code]
	return ok
}

// FilterReasons keeps only codes the domain declares, preserving order.
func (d *Domain) FilterReasons(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if d.Declares(c) {
			out = append(out, c)
		}
	}
	return out
}

// Describe returns the description of each declared code in codes.
func (d *Domain) Describe(codes []string) []string {
	var out []string
	for _, c := range codes {
		if desc, ok := d.ReasonCodes[c]; ok {
			out = append(out, desc)
		}
	}
	return out
}

// PatternConfidence returns the confidence of a pattern match on s.
func (d *Domain) PatternConfidence(s *Slot) float64 {
	if s.Required {
		return d.Confidence.Required
	}
	return d.Confidence.Optional
}

// ExpectedHeaders returns the tabular headers a slot must carry.
func (d *Domain) ExpectedHeaders(slot string) []string {
	if s, ok := d.Slot(slot); ok {
		return s.ExpectedHeaders
	}
	return nil
}
