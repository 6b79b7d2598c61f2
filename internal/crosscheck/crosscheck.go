// Package crosscheck compares extractions across slots. Each domain
// declares a fixed suite of checks; each check that runs yields one
// synthetic slot result appended after the per-slot results.
package crosscheck

import (
	"fmt"
	"strings"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Status is a check's raw outcome before it is mapped to a verdict.
type Status string

const (
	StatusPass        Status = "PASS"
	StatusWarn        Status = "WARN"
	StatusFail        Status = "FAIL"
	StatusNeedFix     Status = "NEED_FIX"
	StatusNeedClarify Status = "NEED_CLARIFY"
)

// Verdict maps a status to a slot verdict. Unknown statuses are NEED_FIX.
func (s Status) Verdict() evidence.Verdict {
	switch s {
	case StatusPass:
		return evidence.Pass
	case StatusWarn, StatusNeedClarify:
		return evidence.NeedClarify
	default:
		return evidence.NeedFix
	}
}

// Input is the grouped extraction map a suite runs over.
type Input struct {
	BySlot map[string][]evidence.ExtractionResult
	Period evidence.Period
}

// First returns the first extraction of the first listed slot that has any.
func (in Input) First(slots ...string) (evidence.ExtractionResult, bool) {
	for _, s := range slots {
		if rs := in.BySlot[s]; len(rs) > 0 {
			return rs[0], true
		}
	}
	return evidence.ExtractionResult{}, false
}

// All returns every extraction of the listed slots, in slot order.
func (in Input) All(slots ...string) []evidence.ExtractionResult {
	var out []evidence.ExtractionResult
	for _, s := range slots {
		out = append(out, in.BySlot[s]...)
	}
	return out
}

// Finding is the outcome of one check.
type Finding struct {
	Status  Status
	Reasons []string
	Extras  evidence.Extras
	FileIDs []string
}

// Check is one cross-slot rule. Run returns no findings when the check
// does not apply to the submission, and may return several when it
// compares one side against many files.
type Check struct {
	Name  string
	Title string
	Emits []string
	Run   func(in Input) []Finding
}

// Suite is a domain's ordered list of checks.
type Suite struct {
	Domain string
	Checks []Check
}

// Run executes every check in order and converts findings to slot results.
func (s *Suite) Run(in Input) []evidence.SlotResult {
	var out []evidence.SlotResult
	for _, c := range s.Checks {
		for _, f := range c.Run(in) {
			out = append(out, evidence.SlotResult{
				SlotName:    c.Name,
				DisplayName: c.Title,
				Verdict:     f.Status.Verdict(),
				Reasons:     evidence.Dedupe(f.Reasons),
				FileIDs:     nonNil(f.FileIDs),
				FileNames:   []string{},
				Extras:      f.Extras,
			})
		}
	}
	return out
}

// Validate confirms every code the suite may emit is declared by d.
func (s *Suite) Validate(d *catalog.Domain) error {
	if s.Domain != d.Name {
		return fmt.Errorf("cross-check suite for %q bound to domain %q", s.Domain, d.Name)
	}
	for _, c := range s.Checks {
		for _, code := range c.Emits {
			if !d.Declares(code) {
				return fmt.Errorf("cross-check %s: code %s not declared", c.Name, code)
			}
		}
	}
	return nil
}

// For returns the suite of a built-in domain.
func For(domain string) (*Suite, bool) {
	switch domain {
	case "safety", "compliance":
		return &Suite{Domain: domain, Checks: []Check{headcountCheck(domain)}}, true
	case "esg":
		return ESG(), true
	default:
		return nil, false
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ids(rs ...evidence.ExtractionResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.FileID)
	}
	return out
}

// textOf returns the extraction's text, or its table flattened to lines
// when it has no text.
func textOf(r evidence.ExtractionResult) string {
	if strings.TrimSpace(r.Text) != "" || r.Table.Empty() {
		return r.Text
	}
	var b strings.Builder
	for _, row := range r.Table.Rows {
		b.WriteString(strings.Join(row, " "))
		b.WriteByte('\n')
	}
	return b.String()
}
