// Package verdict groups extraction results by slot and decides one
// verdict per slot from its reason codes.
package verdict

import (
	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Codes that make a file unusable as submitted.
var hardFailures = set(
	evidence.ReasonMissingSlot,
	evidence.ReasonFetchFailed,
	evidence.ReasonParseFailed,
	evidence.ReasonHeaderMismatch,
	evidence.ReasonEmptyTable,
	evidence.ReasonOCRFailed,
	evidence.ReasonOCRUnreadable,
	evidence.ReasonImageBlurry,
	evidence.ReasonBillFieldsMissing,
	evidence.ReasonMSDSRequired,
	evidence.ReasonWasteEvidence,
	evidence.ReasonWasteFieldsWeak,
	evidence.ReasonWasteListParse,
)

// Codes for content that was read but needs a human to explain it.
var softAnomalies = set(
	evidence.ReasonViolationDetected,
	evidence.ReasonLowEducationRate,
	evidence.ReasonSignatureMissing,
	evidence.ReasonSpikeWarn,
	evidence.ReasonSpikeFail,
	evidence.ReasonBillMismatch,
	evidence.ReasonLLMAnomaly,
	evidence.ReasonLLMMissingFields,
	evidence.ReasonDateMismatch,
	evidence.ReasonMSDSOptional,
	evidence.ReasonWasteNameMismatch,
	evidence.ReasonBaselineMissing,
	evidence.ReasonBaselineInvalid,
	evidence.ReasonPeakSpikeWarn,
	evidence.ReasonPeakSpikeFail,
)

func set(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// IsHardFailure reports whether code forces NEED_FIX.
func IsHardFailure(code string) bool {
	_, ok := hardFailures[code]
	return ok
}

// IsSoftAnomaly reports whether code is a known clarification trigger.
func IsSoftAnomaly(code string) bool {
	_, ok := softAnomalies[code]
	return ok
}

// Decide maps reason codes to a verdict. Any hard failure is NEED_FIX.
// Otherwise any remaining code, known or not, is NEED_CLARIFY; only an
// empty list passes.
func Decide(reasons []string) evidence.Verdict {
	for _, r := range reasons {
		if IsHardFailure(r) {
			return evidence.NeedFix
		}
	}
	for _, r := range reasons {
		if IsSoftAnomaly(r) {
			return evidence.NeedClarify
		}
	}
	if len(reasons) > 0 {
		return evidence.NeedClarify
	}
	return evidence.Pass
}

// Group is the extraction results of one slot in submission order.
type Group struct {
	Slot    string
	Results []evidence.ExtractionResult
}

// GroupBySlot groups results by slot name. Groups are ordered by the first
// result of each slot and results keep their input order within a group.
func GroupBySlot(results []evidence.ExtractionResult) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, r := range results {
		slot := r.SlotName
		if slot == "" {
			slot = evidence.UnknownSlot
		}

		i, ok := index[slot]
		if !ok {
			i = len(groups)
			index[slot] = i
			groups = append(groups, Group{Slot: slot})
		}
		groups[i].Results = append(groups[i].Results, r)
	}

	return groups
}

// BySlot indexes grouped results by slot name.
func BySlot(groups []Group) map[string][]evidence.ExtractionResult {
	m := make(map[string][]evidence.ExtractionResult, len(groups))
	for _, g := range groups {
		m[g.Slot] = g.Results
	}
	return m
}

// Evaluate merges one group into a slot result. Reason codes keep their
// first occurrence; later files' extras win on collision.
func Evaluate(d *catalog.Domain, g Group) evidence.SlotResult {
	sr := evidence.SlotResult{
		SlotName:    g.Slot,
		DisplayName: d.DisplayName(g.Slot),
		Reasons:     []string{},
		FileIDs:     make([]string, 0, len(g.Results)),
		FileNames:   make([]string, 0, len(g.Results)),
	}

	var all []string
	for _, r := range g.Results {
		sr.FileIDs = append(sr.FileIDs, r.FileID)
		sr.FileNames = append(sr.FileNames, r.FileName)
		all = append(all, r.Reasons...)
		sr.Extras = sr.Extras.Merge(r.Extras)
	}

	sr.Reasons = evidence.Dedupe(all)
	sr.Verdict = Decide(sr.Reasons)
	return sr
}

// EvaluateAll evaluates every group in order. Files no slot claimed are
// not evidence for any slot and yield no result.
func EvaluateAll(d *catalog.Domain, groups []Group) []evidence.SlotResult {
	out := make([]evidence.SlotResult, 0, len(groups))
	for _, g := range groups {
		if g.Slot == evidence.UnknownSlot {
			continue
		}
		out = append(out, Evaluate(d, g))
	}
	return out
}

// Missing returns a NEED_FIX result for one required slot with no files.
func Missing(d *catalog.Domain, slot string) evidence.SlotResult {
	return evidence.SlotResult{
		SlotName:    slot,
		DisplayName: d.DisplayName(slot),
		Verdict:     evidence.NeedFix,
		Reasons:     []string{evidence.ReasonMissingSlot},
		FileIDs:     []string{},
		FileNames:   []string{},
	}
}
