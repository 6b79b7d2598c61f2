// Package matcher assigns submitted files to catalog slots from their
// filenames. Each domain is scored with its catalog's policy; files no
// policy can place are offered to an optional fallback classifier.
package matcher

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/triage"
)

// MinFallbackConfidence is the confidence a fallback answer must exceed.
const MinFallbackConfidence = 0.3

// Classification is a fallback classifier's answer. An empty Slot means
// the classifier declined to choose.
type Classification struct {
	Slot       string  `json:"slot_name"`
	Confidence float64 `json:"confidence"`
}

// Classifier picks a slot for a filename from a list of legal slot names.
type Classifier interface {
	ClassifySlot(ctx context.Context, filename string, slots []string) (Classification, error)
}

// Matcher resolves slot hints for one domain. It is safe for concurrent use.
type Matcher struct {
	domain   *catalog.Domain
	fallback Classifier
	logger   *slog.Logger
}

// New creates a matcher for domain. fallback may be nil.
func New(domain *catalog.Domain, fallback Classifier, logger *slog.Logger) *Matcher {
	return &Matcher{
		domain:   domain,
		fallback: fallback,
		logger:   logger.With("matcher", domain.Name),
	}
}

// Match resolves the slot hint for a single file. The rules run first; the
// fallback classifier is consulted only when they find nothing. Only slots
// accepting the file's kind are candidates. The second return value is
// false when the file stays unassigned.
func (m *Matcher) Match(ctx context.Context, file evidence.FileRef) (evidence.SlotHint, bool) {
	name := file.FileName
	if name == "" {
		name = file.StorageURI
	}

	var kind evidence.FileKind
	if item, err := triage.Route(file); err == nil {
		kind = item.Kind
	}

	if slot, conf, ok := m.MatchKind(name, kind); ok {
		return evidence.SlotHint{
			FileID:      file.FileID,
			SlotName:    slot,
			Confidence:  conf,
			MatchReason: evidence.MatchKeyword,
		}, true
	}

	if m.fallback == nil {
		return evidence.SlotHint{}, false
	}

	slots := m.candidates(kind)
	c, err := m.fallback.ClassifySlot(ctx, name, slots)
	if err != nil {
		m.logger.WarnContext(ctx, "fallback classifier failed", "file_id", file.FileID, "error", err)
		return evidence.SlotHint{}, false
	}

	if !slices.Contains(slots, c.Slot) || c.Confidence <= MinFallbackConfidence {
		m.logger.DebugContext(
			ctx, "fallback answer rejected",
			"file_id", file.FileID,
			"slot", c.Slot,
			"confidence", c.Confidence,
		)
		return evidence.SlotHint{}, false
	}

	return evidence.SlotHint{
		FileID:      file.FileID,
		SlotName:    c.Slot,
		Confidence:  c.Confidence,
		MatchReason: evidence.MatchFallback,
	}, true
}

// MatchName applies the domain's rule policy to a filename without
// consulting the fallback classifier.
func (m *Matcher) MatchName(name string) (string, float64, bool) {
	return m.MatchKind(name, "")
}

// MatchKind is MatchName restricted to slots accepting kind. An empty kind
// leaves every slot a candidate.
func (m *Matcher) MatchKind(name string, kind evidence.FileKind) (string, float64, bool) {
	f := Normalize(name)
	if f == "" {
		return "", 0, false
	}

	switch m.domain.Policy {
	case catalog.PolicyPattern:
		return m.matchPattern(f, kind)
	default:
		return m.matchWeighted(f, kind)
	}
}

func (m *Matcher) candidates(kind evidence.FileKind) []string {
	if kind == "" {
		return m.domain.SlotNames()
	}

	var names []string
	for i := range m.domain.Slots {
		if accepts(&m.domain.Slots[i], kind) {
			names = append(names, m.domain.Slots[i].Name)
		}
	}
	return names
}

func accepts(s *catalog.Slot, kind evidence.FileKind) bool {
	return kind == "" || s.Accepts(kind)
}

func (m *Matcher) matchPattern(f string, kind evidence.FileKind) (string, float64, bool) {
	for i := range m.domain.Slots {
		s := &m.domain.Slots[i]
		if !accepts(s, kind) {
			continue
		}
		if s.Regex().MatchString(f) {
			return s.Name, m.domain.PatternConfidence(s), true
		}
	}
	return "", 0, false
}

func (m *Matcher) matchWeighted(f string, kind evidence.FileKind) (string, float64, bool) {
	var (
		best      string
		bestScore int
	)

	for i := range m.domain.Slots {
		if !accepts(&m.domain.Slots[i], kind) {
			continue
		}
		score, ok := Score(m.domain, &m.domain.Slots[i], f)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = m.domain.Slots[i].Name, score
		}
	}

	if best == "" || bestScore < m.domain.MinScore {
		return "", 0, false
	}

	return best, Band(bestScore), true
}

// Score computes a slot's weighted score for a normalized filename. The
// second return value is false when no domain signal, purpose signal, or
// pattern matches, in which case the slot is not a candidate.
func Score(d *catalog.Domain, s *catalog.Slot, f string) (int, bool) {
	hasDomain := containsAny(f, s.DomainSignals)
	hasPurpose := containsAny(f, s.PurposeSignals)
	hasPattern := s.Regex() != nil && s.Regex().MatchString(f)

	if !hasDomain && !hasPurpose && !hasPattern {
		return 0, false
	}

	score := 0
	if hasDomain {
		score += 2 + countAny(f, s.DomainSignals)
	}
	if hasPurpose {
		score += 2 + countAny(f, s.PurposeSignals)
	}
	if hasDomain && hasPurpose {
		score += d.PairBonus
	}
	score += countAny(f, s.BoostSignals)
	if hasPattern {
		score += 2
	}
	if s.Penalty != nil && containsAny(f, s.Penalty.Signals) {
		score -= s.Penalty.Points
	}

	return score, true
}

// Band maps a weighted score to its confidence.
func Band(score int) float64 {
	switch {
	case score <= 6:
		return 0.78
	case score <= 10:
		return 0.85
	default:
		return 0.92
	}
}

func containsAny(f string, signals []string) bool {
	for _, k := range signals {
		if strings.Contains(f, k) {
			return true
		}
	}
	return false
}

func countAny(f string, signals []string) int {
	n := 0
	for _, k := range signals {
		if strings.Contains(f, k) {
			n++
		}
	}
	return n
}
