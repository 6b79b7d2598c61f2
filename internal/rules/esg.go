package rules

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/usage"
)

const (
	CodeUnitMissing     = "E1_UNIT_MISSING"
	CodeNegativeOrZero  = "E1_NEGATIVE_OR_ZERO"
	CodeSectionMissing  = "E8_SECTION_MISSING"
	minEthicsTopics     = 5
	minPosterTextLength = 80
)

var ethicsTopics = []string{
	"부패", "금품", "이해상충", "공정", "인권", "괴롭힘",
	"개인정보", "정보보호", "신고", "보호", "징계",
}

type meter struct {
	timeCol  string
	valueCol string
	// unit marks the value column as the unit-bearing column whose absence
	// is reported on its own.
	unit  bool
	spike bool
}

// ESG returns the ESG domain rule table.
func ESG() *Set {
	tabular := []evidence.FileKind{evidence.KindTabular}

	return &Set{
		Domain: "esg",
		Checks: map[string]Check{
			"esg.energy.electricity.usage": onKinds(tabular, meterCheck(meter{timeCol: "date", valueCol: "Usage_kWh", unit: true, spike: true})),
			"esg.energy.gas.usage":         onKinds(tabular, meterCheck(meter{timeCol: "timestamp", valueCol: "flow_m3", spike: true})),
			"esg.energy.water.usage":       onKinds(tabular, meterCheck(meter{timeCol: "timestamp", valueCol: "Usage_m3"})),
			"esg.ethics.code":              onKinds([]evidence.FileKind{evidence.KindDocument}, ethicsCode),
			"esg.ethics.poster.image":      posterReadable,
		},
		Emits: []string{
			evidence.ReasonParseFailed,
			evidence.ReasonHeaderMismatch,
			evidence.ReasonSpikeWarn,
			evidence.ReasonSpikeFail,
			evidence.ReasonOCRUnreadable,
			CodeUnitMissing,
			CodeNegativeOrZero,
			CodeSectionMissing,
		},
	}
}

// meterCheck validates a metered usage table: the value column exists,
// every reading is positive, and the last day does not jump away from
// the trailing week.
func meterCheck(m meter) Check {
	return func(in Input) Findings {
		t := in.Result.Table
		if t.Empty() {
			return Findings{Add: []string{evidence.ReasonParseFailed}}
		}

		vi := t.Column(m.valueCol)
		if vi < 0 {
			f := Findings{Add: []string{evidence.ReasonHeaderMismatch}}
			if m.unit {
				f.Add = append(f.Add, CodeUnitMissing)
			}
			return f
		}

		var f Findings
		for r := range t.Rows {
			if v, ok := usage.ParseNumber(t.Cell(r, vi)); ok && v <= 0 {
				f.Add = append(f.Add, CodeNegativeOrZero)
				break
			}
		}

		if !m.spike {
			return f
		}

		pts, ok := usage.Points(t, m.timeCol, m.valueCol)
		if !ok {
			return f
		}
		spike, ok := usage.LastDaySpike(usage.Daily(pts))
		if !ok {
			return f
		}

		switch usage.RatioBand(spike.Ratio) {
		case usage.SeverityFail:
			f.Add = append(f.Add, evidence.ReasonSpikeFail)
			f.Extras.Spike = &spike
		case usage.SeverityWarn:
			f.Add = append(f.Add, evidence.ReasonSpikeWarn)
			f.Extras.Spike = &spike
		}
		return f
	}
}

func ethicsCode(in Input) Findings {
	text := strings.TrimSpace(in.Result.Text)
	if text == "" {
		return Findings{Add: []string{evidence.ReasonParseFailed}}
	}

	absent := missing(text, ethicsTopics...)
	if len(ethicsTopics)-len(absent) < minEthicsTopics {
		return Findings{
			Add:    []string{CodeSectionMissing},
			Extras: evidence.Extras{MissingFields: absent},
		}
	}
	return Findings{}
}

func posterReadable(in Input) Findings {
	r := in.Result
	if slices.Contains(r.Reasons, evidence.ReasonOCRFailed) ||
		utf8.RuneCountInString(strings.TrimSpace(r.Text)) < minPosterTextLength {
		return Findings{Add: []string{evidence.ReasonOCRUnreadable}}
	}
	return Findings{}
}
