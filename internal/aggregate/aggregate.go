// Package aggregate completes a submission: it fills in missing required
// slots, decides the overall verdict and risk, and writes the deterministic
// explanations shown to the submitter.
package aggregate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/verdict"
)

// Extras is the submission-level side data of a report.
type Extras struct {
	ServiceWhy       string `json:"service_why"`
	AIOverallComment string `json:"ai_overall_comment,omitempty"`
}

// Report is the final outcome of one submission.
type Report struct {
	PackageID      string                   `json:"package_id"`
	RiskLevel      evidence.RiskLevel       `json:"risk_level"`
	Verdict        evidence.Verdict         `json:"verdict"`
	Why            string                   `json:"why"`
	SlotResults    []evidence.SlotResult    `json:"slot_results"`
	Clarifications []evidence.Clarification `json:"clarifications"`
	Extras         Extras                   `json:"extras"`
}

// MissingSlots returns the domain's required slots with no produced result,
// in catalog order.
func MissingSlots(d *catalog.Domain, results []evidence.SlotResult) []string {
	var missing []string
	for _, slot := range d.RequiredSlots() {
		if !slices.ContainsFunc(results, func(sr evidence.SlotResult) bool { return sr.SlotName == slot }) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// Overall returns the most severe verdict among results and its risk level.
func Overall(results []evidence.SlotResult) (evidence.Verdict, evidence.RiskLevel) {
	vs := make([]evidence.Verdict, 0, len(results))
	for _, sr := range results {
		vs = append(vs, sr.Verdict)
	}
	v := evidence.Worst(vs...)
	return v, v.Risk()
}

// Aggregate builds the report for results, which hold the per-slot results
// followed by cross-check results. Missing required slots are appended as
// NEED_FIX results before the overall verdict is decided.
func Aggregate(d *catalog.Domain, period evidence.Period, results []evidence.SlotResult) *Report {
	all := slices.Clone(results)
	for _, slot := range MissingSlots(d, results) {
		all = append(all, verdict.Missing(d, slot))
	}

	r := &Report{
		SlotResults:    all,
		Clarifications: make([]evidence.Clarification, 0, len(all)),
	}
	r.Verdict, r.RiskLevel = Overall(all)

	lines := make([]string, 0, len(all))
	for _, sr := range all {
		message, points := Explain(d, period, sr)

		r.Clarifications = append(r.Clarifications, evidence.Clarification{
			SlotName: sr.SlotName,
			Message:  message,
			Points:   points,
			FileIDs:  sr.FileIDs,
		})

		lines = append(lines, whyLines(sr, points)...)
	}

	r.Why = strings.Join(lines, "\n")
	r.Extras.ServiceWhy = r.Why
	return r
}

// whyLines names each file of a result with the result's lead point.
// Results without files are named by display name, then slot name.
func whyLines(sr evidence.SlotResult, points []string) []string {
	lead := insufficientDetail
	if len(points) > 0 {
		lead = points[0]
	}

	names := sr.FileNames
	if len(names) == 0 {
		name := sr.DisplayName
		if name == "" {
			name = sr.SlotName
		}
		names = []string{name}
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, fmt.Sprintf("[%s]: %s", n, lead))
	}
	return out
}

// Digest renders slot results as the plain-text input of an overall review.
func Digest(results []evidence.SlotResult) string {
	var b strings.Builder
	for _, sr := range results {
		fmt.Fprintf(&b, "[%s] verdict=%s, reasons=%v", sr.SlotName, sr.Verdict, sr.Reasons)

		var details []string
		e := sr.Extras
		if len(e.Anomalies) > 0 {
			details = append(details, "anomalies: "+strings.Join(e.Anomalies, ", "))
		}
		if len(e.Violations) > 0 {
			details = append(details, "violations: "+strings.Join(e.Violations, ", "))
		}
		if len(e.MissingFields) > 0 {
			details = append(details, "missing_fields: "+strings.Join(e.MissingFields, ", "))
		}
		if e.Summary != "" {
			details = append(details, "summary: "+e.Summary)
		}
		if e.Detail != "" {
			details = append(details, "detail: "+e.Detail)
		}
		if len(details) > 0 {
			b.WriteString(" | details: ")
			b.WriteString(strings.Join(details, "; "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
