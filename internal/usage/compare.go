package usage

import (
	"math"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Severity grades a comparison result.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarn
	SeverityFail
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "WARN"
	case SeverityFail:
		return "FAIL"
	default:
		return "NONE"
	}
}

// RatioBand grades a current/baseline ratio. [0.75, 1.25] is normal,
// [0.5, 1.5] outside that warns, and anything beyond fails.
func RatioBand(ratio float64) Severity {
	switch {
	case ratio < 0.5 || ratio > 1.5:
		return SeverityFail
	case ratio < 0.75 || ratio > 1.25:
		return SeverityWarn
	default:
		return SeverityNone
	}
}

// MinSpikeDays is the series length below which spikes are not measured.
const MinSpikeDays = 10

// LastDaySpike compares the last day's total to the mean of the seven days
// before it. The second return value is false when the series is shorter
// than MinSpikeDays or the baseline is not positive.
func LastDaySpike(days []Day) (evidence.SpikeMeasure, bool) {
	if len(days) < MinSpikeDays {
		return evidence.SpikeMeasure{}, false
	}

	last := days[len(days)-1].Total
	window := days[len(days)-8 : len(days)-1]

	var sum float64
	for _, d := range window {
		sum += d.Total
	}
	baseline := sum / float64(len(window))
	if baseline <= 0 {
		return evidence.SpikeMeasure{}, false
	}

	return evidence.SpikeMeasure{
		LastDay:  Round(last, 3),
		Baseline: Round(baseline, 3),
		Ratio:    Round(last/baseline, 3),
	}, true
}

// PercentDiff returns |a - b| / b * 100.
func PercentDiff(a, b float64) float64 {
	return math.Abs(a-b) / b * 100
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
