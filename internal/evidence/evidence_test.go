package evidence_test

import (
	"slices"
	"testing"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"no duplicates", []string{"A", "B"}, []string{"A", "B"}},
		{"adjacent duplicates", []string{"A", "A", "B"}, []string{"A", "B"}},
		{"first occurrence wins", []string{"B", "A", "B", "C", "A"}, []string{"B", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evidence.Dedupe(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Dedupe(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppendUniqueAndWithout(t *testing.T) {
	codes := evidence.AppendUnique([]string{"A"}, "B", "A", "C")
	if want := []string{"A", "B", "C"}; !slices.Equal(codes, want) {
		t.Errorf("AppendUnique() = %v, want %v", codes, want)
	}

	codes = evidence.Without(codes, "B")
	if want := []string{"A", "C"}; !slices.Equal(codes, want) {
		t.Errorf("Without() = %v, want %v", codes, want)
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name string
		in   []evidence.Verdict
		want evidence.Verdict
	}{
		{"empty is pass", nil, evidence.Pass},
		{"all pass", []evidence.Verdict{evidence.Pass, evidence.Pass}, evidence.Pass},
		{"clarify beats pass", []evidence.Verdict{evidence.Pass, evidence.NeedClarify}, evidence.NeedClarify},
		{"fix beats clarify", []evidence.Verdict{evidence.NeedClarify, evidence.NeedFix, evidence.Pass}, evidence.NeedFix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evidence.Worst(tt.in...); got != tt.want {
				t.Errorf("Worst(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestVerdictRisk(t *testing.T) {
	tests := []struct {
		verdict evidence.Verdict
		want    evidence.RiskLevel
	}{
		{evidence.Pass, evidence.RiskLow},
		{evidence.NeedClarify, evidence.RiskMedium},
		{evidence.NeedFix, evidence.RiskHigh},
	}

	for _, tt := range tests {
		if got := tt.verdict.Risk(); got != tt.want {
			t.Errorf("%s.Risk() = %s, want %s", tt.verdict, got, tt.want)
		}
	}
}

func TestExtrasMerge(t *testing.T) {
	three, five := 3, 5

	first := evidence.Extras{
		Summary:   "first",
		Anomalies: []string{"a"},
		Persons:   &evidence.PersonCounts{Count: &three},
	}
	second := evidence.Extras{
		Summary: "second",
		Persons: &evidence.PersonCounts{Count: &five},
	}

	got := first.Merge(second)

	if got.Summary != "second" {
		t.Errorf("Summary = %q, want second", got.Summary)
	}
	if !slices.Equal(got.Anomalies, []string{"a"}) {
		t.Errorf("Anomalies = %v, want [a]", got.Anomalies)
	}
	if n, ok := got.PersonCount(); !ok || n != 5 {
		t.Errorf("PersonCount() = %d, %v, want 5, true", n, ok)
	}
	if n, ok := first.PersonCount(); !ok || n != 3 {
		t.Errorf("Merge mutated receiver: PersonCount() = %d, %v, want 3, true", n, ok)
	}
}

func TestPeriodContains(t *testing.T) {
	p := evidence.Period{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"start day", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"end day late hour", time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), true},
		{"before", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"after", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Contains(tt.d); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestTableAccess(t *testing.T) {
	tbl := &evidence.Table{
		Headers: []string{"date", "Usage_kWh"},
		Rows:    [][]string{{"2025-01-01", "10"}, {"2025-01-02"}},
	}

	if got := tbl.Column("Usage_kWh"); got != 1 {
		t.Errorf("Column(Usage_kWh) = %d, want 1", got)
	}
	if got := tbl.Column("missing"); got != -1 {
		t.Errorf("Column(missing) = %d, want -1", got)
	}
	if got := tbl.Cell(1, 1); got != "" {
		t.Errorf("Cell(1, 1) = %q, want empty", got)
	}

	var nilTable *evidence.Table
	if !nilTable.Empty() {
		t.Error("nil table should be empty")
	}
}

func TestScanDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no dates here", nil},
		{"dotted", "점검일 2025.10.03 확인", []string{"2025-10-03"}},
		{"korean", "2025년 3월 7일 개정", []string{"2025-03-07"}},
		{"mixed", "2025-01-02 ~ 2025/01/31", []string{"2025-01-02", "2025-01-31"}},
		{"invalid day skipped", "2025.02.30 and 2025.02.28", []string{"2025-02-28"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range evidence.ScanDates(tt.text) {
				got = append(got, evidence.FormatDate(d))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ScanDates(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}

	if _, ok := evidence.FirstDate(""); ok {
		t.Error("FirstDate(\"\") ok = true, want false")
	}
}

func TestPeriodDateFindings(t *testing.T) {
	p := evidence.Period{
		Start: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
	}
	in := time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)
	out := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dates   []time.Time
		wantOK  bool
		reasons []string
	}{
		{"none", nil, false, []string{evidence.ReasonNoDateFound}},
		{"inside", []time.Time{in}, true, nil},
		{"outside", []time.Time{in, out}, false, []string{evidence.ReasonDateMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reasons := p.DateFindings(tt.dates)
			if ok != tt.wantOK || !slices.Equal(reasons, tt.reasons) {
				t.Errorf("DateFindings(%v) = (%v, %v), want (%v, %v)", tt.dates, ok, reasons, tt.wantOK, tt.reasons)
			}
		})
	}
}
