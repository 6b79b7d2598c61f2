package evidence

// Verdict is the outcome of validating a slot. Values are ordered by severity.
type Verdict string

const (
	Pass        Verdict = "PASS"
	NeedClarify Verdict = "NEED_CLARIFY"
	NeedFix     Verdict = "NEED_FIX"
)

// Severity ranks verdicts so the most severe can be selected.
func (v Verdict) Severity() int {
	switch v {
	case NeedFix:
		return 2
	case NeedClarify:
		return 1
	default:
		return 0
	}
}

// RiskLevel is the submission-level risk derived from the overall verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Risk maps a verdict to its risk level.
func (v Verdict) Risk() RiskLevel {
	switch v {
	case NeedFix:
		return RiskHigh
	case NeedClarify:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Worst returns the most severe verdict among vs, or Pass when vs is empty.
func Worst(vs ...Verdict) Verdict {
	worst := Pass
	for _, v := range vs {
		if v.Severity() > worst.Severity() {
			worst = v
		}
	}
	return worst
}
