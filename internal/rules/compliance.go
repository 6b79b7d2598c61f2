package rules

import (
	"strconv"
	"strings"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/usage"
)

const (
	CodeKeywordMissing     = "KEYWORD_MISSING"
	CodeWrongYear          = "WRONG_YEAR"
	CodeHighContractGap    = "HIGH_CONTRACT_GAP"
	CodePolicyOutdated     = "POLICY_OUTDATED"
	CodeDataNotFound       = "DATA_NOT_FOUND"
	CodeHighRiskDetected   = "HIGH_RISK_DETECTED"
	CodeMissingMandatory   = "MISSING_MANDATORY_TRAINING"
	maxPrivacyFailShare    = 0.2
	maxContractGapShare    = 0.3
	maxMissingMandatory    = 1
	policyRevisionValidity = 1
)

var (
	contractClauses   = []string{"선급금", "지연이자", "목적물", "기성금"}
	mandatoryTraining = []string{"개인정보", "성희롱", "장애인", "산업안전"}
)

// Compliance returns the compliance domain rule table.
func Compliance() *Set {
	return &Set{
		Domain: "compliance",
		Checks: map[string]Check{
			"compliance.contract.sample":   contractSample,
			"compliance.contract.status":   onKinds([]evidence.FileKind{evidence.KindTabular}, contractStatus),
			"compliance.privacy.policy":    privacyPolicy,
			"compliance.education.privacy": privacyEducation,
			"compliance.fair.trade":        fairTrade,
			"compliance.education.plan":    onKinds([]evidence.FileKind{evidence.KindDocument}, educationPlan),
			"compliance.ethics.report":     onKinds([]evidence.FileKind{evidence.KindDocument}, reportingYear),
		},
		Emits: []string{
			evidence.ReasonEmptyTable,
			evidence.ReasonLowEducationRate,
			CodeKeywordMissing,
			CodeWrongYear,
			CodeHighContractGap,
			CodePolicyOutdated,
			CodeDataNotFound,
			CodeHighRiskDetected,
			CodeMissingMandatory,
		},
	}
}

// contractText flattens a contract to searchable text whether it arrived
// as a document or as a clause table.
func contractText(r evidence.ExtractionResult) string {
	if r.Table.Empty() {
		return r.Text
	}
	var b strings.Builder
	b.WriteString(r.Text)
	b.WriteString(strings.Join(r.Table.Headers, " "))
	for _, row := range r.Table.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, " "))
	}
	return b.String()
}

func contractSample(in Input) Findings {
	text := contractText(in.Result)

	var f Findings
	if len(missing(text, contractClauses...)) > 0 {
		f.Add = append(f.Add, CodeKeywordMissing)
	}
	if !mentionsYear(text, in.Result.Period) {
		f.Add = append(f.Add, CodeWrongYear)
	}
	return f
}

func mentionsYear(text string, p evidence.Period) bool {
	return strings.Contains(text, strconv.Itoa(p.End.Year()))
}

func reportingYear(in Input) Findings {
	if mentionsYear(in.Result.Text, in.Result.Period) {
		return Findings{}
	}
	return Findings{Add: []string{CodeWrongYear}}
}

// contractStatus flags a roster where too many workers lack a signed contract.
func contractStatus(in Input) Findings {
	t := in.Result.Table
	if t.Empty() {
		return Findings{Add: []string{evidence.ReasonEmptyTable}}
	}

	dateCol := columnWith(t, "계약일")
	statusCol := columnWith(t, "상태")
	if dateCol < 0 && statusCol < 0 {
		return Findings{}
	}

	var gaps int
	for r := range t.Rows {
		noDate := dateCol >= 0 && blank(t.Cell(r, dateCol))
		status := t.Cell(r, statusCol)
		unsigned := statusCol >= 0 && (blank(status) || containsAny(status, "미체결", "미작성", "누락"))
		if noDate || unsigned {
			gaps++
		}
	}

	if float64(gaps)/float64(len(t.Rows)) > maxContractGapShare {
		return Findings{Add: []string{CodeHighContractGap}}
	}
	return Findings{}
}

// privacyPolicy flags a policy whose latest revision is more than a year
// older than the end of the reporting period.
func privacyPolicy(in Input) Findings {
	latest, ok := latestRevision(in.Result)
	if !ok {
		return Findings{}
	}
	cutoff := in.Result.Period.End.AddDate(-policyRevisionValidity, 0, 0)
	if latest.Before(cutoff) {
		return Findings{
			Add:    []string{CodePolicyOutdated},
			Extras: evidence.Extras{Detail: "latest revision " + evidence.FormatDate(latest)},
		}
	}
	return Findings{}
}

func latestRevision(r evidence.ExtractionResult) (time.Time, bool) {
	var dates []time.Time
	if c := columnWith(r.Table, "개정일"); c >= 0 {
		for _, v := range column(r.Table, c) {
			if d, ok := usage.ParseTime(v); ok {
				dates = append(dates, d)
			}
		}
	}
	if len(dates) == 0 {
		dates = append(dates, r.Dates...)
	}
	if len(dates) == 0 {
		dates = evidence.ScanDates(r.Text)
	}
	if len(dates) == 0 {
		return time.Time{}, false
	}

	latest := dates[0]
	for _, d := range dates[1:] {
		if d.After(latest) {
			latest = d
		}
	}
	return latest, true
}

func privacyEducation(in Input) Findings {
	var total, failed int

	switch in.Kind {
	case evidence.KindTabular:
		t := in.Result.Table
		if t.Empty() {
			return Findings{Add: []string{evidence.ReasonEmptyTable}}
		}
		c := columnWith(t, "이수", "여부")
		if c < 0 {
			return Findings{Add: []string{CodeDataNotFound}}
		}
		for _, v := range column(t, c) {
			total++
			if strings.Contains(strings.ToUpper(v), "N") || strings.Contains(v, "미이수") {
				failed++
			}
		}
	default:
		for _, fields := range tokenLines(in.Result.Text) {
			switch strings.ToUpper(fields[len(fields)-1]) {
			case "Y":
				total++
			case "N":
				total++
				failed++
			}
		}
	}

	if total == 0 {
		return Findings{Add: []string{CodeDataNotFound}}
	}
	if float64(failed)/float64(total) > maxPrivacyFailShare {
		return Findings{Add: []string{evidence.ReasonLowEducationRate}}
	}
	return Findings{}
}

// fairTrade flags any row that reports a risk as identified (Y) but
// not remediated (N).
func fairTrade(in Input) Findings {
	rows := tokenLines(in.Result.Text)
	if t := in.Result.Table; !t.Empty() {
		rows = t.Rows
	}

	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		if strings.Contains(strings.ToUpper(row[1]), "Y") && strings.Contains(strings.ToUpper(row[2]), "N") {
			return Findings{Add: []string{CodeHighRiskDetected}}
		}
	}
	return Findings{}
}

func educationPlan(in Input) Findings {
	absent := missing(in.Result.Text, mandatoryTraining...)
	if len(absent) > maxMissingMandatory {
		return Findings{
			Add:    []string{CodeMissingMandatory},
			Extras: evidence.Extras{MissingFields: absent},
		}
	}
	return Findings{}
}

// tokenLines splits text into whitespace-separated fields per non-empty line.
func tokenLines(text string) [][]string {
	var out [][]string
	for line := range strings.Lines(text) {
		if fields := strings.Fields(line); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}
