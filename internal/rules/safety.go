package rules

import (
	"math"
	"strings"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/usage"
)

const (
	CodeEduDeptZero        = "EDU_DEPT_ZERO"
	CodeEduRateSpike       = "EDU_RATE_SPIKE"
	CodeEduFutureDate      = "EDU_FUTURE_DATE"
	CodeRiskActionMissing  = "RISK_ACTION_MISSING"
	CodeRiskOwnerMissing   = "RISK_OWNER_MISSING"
	CodeRiskDateMissing    = "RISK_CHECKDATE_MISSING"
	CodeFireAllGood        = "FIRE_ALL_GOOD_PATTERN"
	CodeFireCopyPaste      = "FIRE_COPYPASTE_PATTERN"
	minEducationRate       = 80.0
	maxEducationRateSwing  = 30.0
	maxRiskBlankShare      = 0.3
	minRepeatedFireResults = 3
)

type section struct {
	code    string
	needles []string
}

var managementSections = []section{
	{"MISSING_SECTION_ORG", []string{"조직", "책임", "권한"}},
	{"MISSING_SECTION_RISK", []string{"위험성평가", "위험성 평가"}},
	{"MISSING_SECTION_INCIDENT", []string{"사고", "대응", "비상"}},
	{"MISSING_SECTION_TRAINING", []string{"교육", "점검"}},
	{"MISSING_SECTION_IMPROVE", []string{"개선", "조치"}},
}

// Safety returns the safety domain rule table.
func Safety() *Set {
	emits := []string{
		evidence.ReasonEmptyTable,
		evidence.ReasonLowEducationRate,
		CodeEduDeptZero,
		CodeEduRateSpike,
		CodeEduFutureDate,
		CodeRiskActionMissing,
		CodeRiskOwnerMissing,
		CodeRiskDateMissing,
		CodeFireAllGood,
		CodeFireCopyPaste,
	}
	for _, s := range managementSections {
		emits = append(emits, s.code)
	}

	return &Set{
		Domain: "safety",
		Checks: map[string]Check{
			"safety.education.status":  onKinds([]evidence.FileKind{evidence.KindTabular}, educationStatus),
			"safety.risk.assessment":   onKinds([]evidence.FileKind{evidence.KindTabular}, riskAssessment),
			"safety.management.system": onKinds([]evidence.FileKind{evidence.KindDocument}, managementSystem),
			"safety.fire.inspection":   fireInspection,
		},
		Emits: emits,
	}
}

func educationStatus(in Input) Findings {
	t := in.Result.Table
	if t.Empty() {
		return Findings{Add: []string{evidence.ReasonEmptyTable}}
	}

	var f Findings

	rateCols := columnsWhere(t, func(h string) bool {
		return strings.Contains(h, "이수율") && !strings.Contains(h, "전월")
	})
	var low, zero bool
	for _, c := range rateCols {
		for r := range t.Rows {
			v, ok := usage.ParseNumber(t.Cell(r, c))
			if !ok {
				continue
			}
			low = low || v < minEducationRate
			zero = zero || v == 0
		}
	}
	if low {
		f.Add = append(f.Add, evidence.ReasonLowEducationRate)
	}
	if zero {
		f.Add = append(f.Add, CodeEduDeptZero)
	}

	cur := columnsWhere(t, func(h string) bool { return strings.Contains(h, "현재") && strings.Contains(h, "이수율") })
	prev := columnsWhere(t, func(h string) bool { return strings.Contains(h, "전월") && strings.Contains(h, "이수율") })
	if len(cur) > 0 && len(prev) > 0 && rateSwing(t, cur[0], prev[0]) {
		f.Add = append(f.Add, CodeEduRateSpike)
	}

	dateCols := columnsWhere(t, func(h string) bool { return containsAny(h, "날짜", "일자", "교육일") })
	if futureDate(t, dateCols, in.Now) {
		f.Add = append(f.Add, CodeEduFutureDate)
	}

	return f
}

func rateSwing(t *evidence.Table, cur, prev int) bool {
	for r := range t.Rows {
		a, ok1 := usage.ParseNumber(t.Cell(r, cur))
		b, ok2 := usage.ParseNumber(t.Cell(r, prev))
		if ok1 && ok2 && math.Abs(a-b) > maxEducationRateSwing {
			return true
		}
	}
	return false
}

func futureDate(t *evidence.Table, cols []int, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, c := range cols {
		for r := range t.Rows {
			d, ok := usage.ParseTime(t.Cell(r, c))
			if !ok {
				continue
			}
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			if day.After(today) {
				return true
			}
		}
	}
	return false
}

func riskAssessment(in Input) Findings {
	t := in.Result.Table
	if t.Empty() {
		return Findings{Add: []string{evidence.ReasonEmptyTable}}
	}

	var f Findings

	if c := columnWith(t, "대책", "조치", "action"); c < 0 || blankShare(t, c) > maxRiskBlankShare {
		f.Add = append(f.Add, CodeRiskActionMissing)
	}
	if c := columnWith(t, "담당", "책임"); c < 0 || blankShare(t, c) > maxRiskBlankShare {
		f.Add = append(f.Add, CodeRiskOwnerMissing)
	}
	if c := columnWith(t, "점검일", "일자", "날짜"); c >= 0 && blankShare(t, c) > maxRiskBlankShare {
		f.Add = append(f.Add, CodeRiskDateMissing)
	}

	return f
}

// managementSystem checks a safety management manual for its required
// sections. Manuals are not signed, so a missing signature is dropped.
func managementSystem(in Input) Findings {
	f := Findings{Suppress: []string{evidence.ReasonSignatureMissing}}
	for _, s := range managementSections {
		if !containsAny(in.Result.Text, s.needles...) {
			f.Add = append(f.Add, s.code)
		}
	}
	return f
}

func fireInspection(in Input) Findings {
	f := Findings{Suppress: []string{evidence.ReasonSignatureMissing}}

	switch in.Kind {
	case evidence.KindTabular:
		if allSameResult(in.Result.Table) {
			f.Add = append(f.Add, CodeFireAllGood)
		}
	case evidence.KindDocument:
		if repeatedLines(in.Result.Text) {
			f.Add = append(f.Add, CodeFireCopyPaste)
		}
	}

	return f
}

func allSameResult(t *evidence.Table) bool {
	c := columnWith(t, "결과")
	if c < 0 {
		return false
	}
	values := column(t, c)
	if len(values) < minRepeatedFireResults {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func repeatedLines(text string) bool {
	counts := make(map[string]int)
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if len([]rune(line)) <= 10 {
			continue
		}
		counts[line]++
		if counts[line] >= minRepeatedFireResults {
			return true
		}
	}
	return false
}
