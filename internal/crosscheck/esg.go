package crosscheck

import (
	"regexp"
	"strings"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/usage"
)

const (
	PeakName     = "esg.energy.electricity.peak_2024_vs_2025"
	DisposalName = "esg.hazmat.disposal.cross_check"
	CoverageName = "esg.hazmat.msds.coverage"
	PledgeName   = "esg.ethics.pledge_check"
)

// EscalationPct is the bill difference at which a mismatch fails outright.
const EscalationPct = 20.0

// maxNameChecks bounds how many disposal list rows are looked up in the evidence.
const maxNameChecks = 10

var (
	evidenceDate    = regexp.MustCompile(`\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2}`)
	evidenceQty     = regexp.MustCompile(`(?i)([\d,]+)\s*(kg|톤|t|l|m3|m³)`)
	evidenceCompany = regexp.MustCompile(`(주식회사|㈜|처리업체|수거|운반|위탁)`)
)

// meterPair describes one usage series and the bills it is reconciled with.
type meterPair struct {
	name     string
	title    string
	usage    string
	bill     string
	timeCol  string
	valueCol string
	tolPct   float64
}

var meterPairs = []meterPair{
	{
		name: "esg.energy.electricity.month_match", title: "Electricity usage vs bill",
		usage: "esg.energy.electricity.usage", bill: "esg.energy.electricity.bill",
		timeCol: "date", valueCol: "Usage_kWh", tolPct: 1.0,
	},
	{
		name: "esg.energy.gas.month_match", title: "Gas usage vs bill",
		usage: "esg.energy.gas.usage", bill: "esg.energy.gas.bill",
		timeCol: "timestamp", valueCol: "flow_m3", tolPct: 2.0,
	},
	{
		name: "esg.energy.water.month_match", title: "Water usage vs bill",
		usage: "esg.energy.water.usage", bill: "esg.energy.water.bill",
		timeCol: "timestamp", valueCol: "Usage_m3", tolPct: 1.0,
	},
}

// ESG returns the environmental domain's cross-slot suite.
func ESG() *Suite {
	checks := []Check{peakCheck()}
	for _, p := range meterPairs {
		checks = append(checks, monthMatchCheck(p))
	}
	checks = append(checks, disposalCheck(), coverageCheck(), pledgeCheck())
	return &Suite{Domain: "esg", Checks: checks}
}

func peakCheck() Check {
	return Check{
		Name:  PeakName,
		Title: "Electricity peak vs prior year",
		Emits: []string{
			evidence.ReasonBaselineMissing,
			evidence.ReasonBaselineInvalid,
			evidence.ReasonParseFailed,
			evidence.ReasonPeakSpikeWarn,
			evidence.ReasonPeakSpikeFail,
		},
		Run: func(in Input) []Finding {
			current, ok := in.First("esg.energy.electricity.usage")
			if !ok {
				return nil
			}

			baseline, ok := in.First("esg.energy.electricity.usage.baseline")
			if !ok {
				return []Finding{{
					Status:  StatusWarn,
					Reasons: []string{evidence.ReasonBaselineMissing},
					FileIDs: ids(current),
				}}
			}

			files := ids(baseline, current)
			if baseline.Table.Empty() || current.Table.Empty() {
				return []Finding{{Status: StatusWarn, Reasons: []string{evidence.ReasonParseFailed}, FileIDs: files}}
			}

			p24, ok24 := tablePeak(baseline.Table, "date", "Usage_kWh")
			p25, ok25 := tablePeak(current.Table, "date", "Usage_kWh")
			if !ok24 || !ok25 || p24 <= 0 || p25 == 0 {
				return []Finding{{Status: StatusWarn, Reasons: []string{evidence.ReasonBaselineInvalid}, FileIDs: files}}
			}

			f := Finding{
				Status:  StatusPass,
				FileIDs: files,
				Extras: evidence.Extras{Peak: &evidence.PeakComparison{
					Baseline: usage.Round(p24, 3),
					Current:  usage.Round(p25, 3),
					Ratio:    usage.Round(p25/p24, 3),
				}},
			}

			switch usage.RatioBand(p25 / p24) {
			case usage.SeverityFail:
				f.Status = StatusFail
				f.Reasons = []string{evidence.ReasonPeakSpikeFail}
			case usage.SeverityWarn:
				f.Status = StatusWarn
				f.Reasons = []string{evidence.ReasonPeakSpikeWarn}
			}
			return []Finding{f}
		},
	}
}

func tablePeak(t *evidence.Table, timeCol, valueCol string) (float64, bool) {
	pts, ok := usage.Points(t, timeCol, valueCol)
	if !ok {
		return 0, false
	}
	return usage.Peak(usage.Daily(pts))
}

func monthMatchCheck(p meterPair) Check {
	return Check{
		Name:  p.name,
		Title: p.title,
		Emits: []string{
			evidence.ReasonParseFailed,
			evidence.ReasonBillFieldsMissing,
			evidence.ReasonBillMismatch,
		},
		Run: func(in Input) []Finding {
			u, ok := in.First(p.usage)
			bills := in.All(p.bill)
			if !ok || len(bills) == 0 {
				return nil
			}

			if u.Table.Empty() || !usage.HasColumns(u.Table, p.timeCol, p.valueCol) {
				return []Finding{{Status: StatusNeedFix, Reasons: []string{evidence.ReasonParseFailed}, FileIDs: ids(u)}}
			}

			pts, _ := usage.Points(u.Table, p.timeCol, p.valueCol)
			totals := usage.Monthly(pts)

			out := make([]Finding, 0, len(bills))
			for _, b := range bills {
				out = append(out, CompareBill(totals, usage.ParseBill(b.Text), p.tolPct, ids(u, b)))
			}
			return out
		},
	}
}

// CompareBill reconciles one bill against monthly usage totals.
func CompareBill(totals map[usage.Month]float64, bill usage.Bill, tolPct float64, files []string) Finding {
	month, ok := bill.Month()
	if !ok {
		return Finding{Status: StatusNeedFix, Reasons: []string{evidence.ReasonBillFieldsMissing}, FileIDs: files}
	}

	total, hasTotal := totals[month]
	if !hasTotal || !bill.HasTotal || bill.Total <= 0 {
		return Finding{
			Status:  StatusNeedFix,
			Reasons: []string{evidence.ReasonBillFieldsMissing},
			Extras:  evidence.Extras{Bill: &evidence.BillComparison{Month: month.String(), TolPct: tolPct}},
			FileIDs: files,
		}
	}

	diff := usage.PercentDiff(total, bill.Total)
	cmp := &evidence.BillComparison{
		Month:      month.String(),
		UsageTotal: usage.Round(total, 3),
		BillTotal:  usage.Round(bill.Total, 3),
		DiffPct:    usage.Round(diff, 2),
		TolPct:     tolPct,
	}

	f := Finding{Status: StatusPass, Extras: evidence.Extras{Bill: cmp}, FileIDs: files}
	if diff > tolPct {
		f.Reasons = []string{evidence.ReasonBillMismatch}
		f.Status = StatusNeedFix
		if diff >= EscalationPct {
			f.Status = StatusFail
			cmp.Escalated = true
		}
	}
	return f
}

// DisposalItem is one row of a hazardous waste disposal list.
type DisposalItem struct {
	Name     string
	Date     string
	Quantity string
}

// DisposalItems reads disposal rows, matching column headers loosely.
// Rows without a name or date are skipped.
func DisposalItems(t *evidence.Table) []DisposalItem {
	if t.Empty() {
		return nil
	}

	nameCol := pickColumn(t, "물질", "material", "item", "품명")
	qtyCol := pickColumn(t, "수량", "량", "qty", "quantity", "amount")
	dateCol := pickColumn(t, "일자", "날짜", "date", "처리일", "반출일")
	if nameCol < 0 || dateCol < 0 {
		return nil
	}

	var out []DisposalItem
	for r := range t.Rows {
		name := strings.TrimSpace(t.Cell(r, nameCol))
		date := strings.TrimSpace(t.Cell(r, dateCol))
		if name == "" || date == "" {
			continue
		}
		out = append(out, DisposalItem{
			Name:     name,
			Date:     date,
			Quantity: strings.TrimSpace(t.Cell(r, qtyCol)),
		})
	}
	return out
}

// pickColumn returns the first header containing any key, case-insensitively.
func pickColumn(t *evidence.Table, keys ...string) int {
	for i, h := range t.Headers {
		lh := strings.ToLower(h)
		for _, k := range keys {
			if strings.Contains(lh, k) {
				return i
			}
		}
	}
	return -1
}

// EvidenceComplete reports whether disposal evidence text carries a date,
// a quantity with unit, and a contractor.
func EvidenceComplete(text string) bool {
	return evidenceDate.MatchString(text) &&
		evidenceQty.MatchString(text) &&
		evidenceCompany.MatchString(text)
}

func disposalCheck() Check {
	return Check{
		Name:  DisposalName,
		Title: "Disposal list vs evidence",
		Emits: []string{
			evidence.ReasonWasteEvidence,
			evidence.ReasonWasteListParse,
			evidence.ReasonWasteFieldsWeak,
			evidence.ReasonWasteNameMismatch,
		},
		Run: func(in Input) []Finding {
			list, hasList := in.First("esg.hazmat.disposal.list")
			proof, hasProof := in.First("esg.hazmat.disposal.evidence")
			switch {
			case !hasList && !hasProof:
				return nil
			case !hasList:
				return []Finding{{Status: StatusNeedFix, Reasons: []string{evidence.ReasonWasteEvidence}, FileIDs: ids(proof)}}
			case !hasProof:
				return []Finding{{Status: StatusNeedFix, Reasons: []string{evidence.ReasonWasteEvidence}, FileIDs: ids(list)}}
			}

			f := Finding{Status: StatusPass, FileIDs: ids(list, proof)}

			items := DisposalItems(list.Table)
			if len(items) == 0 {
				f.Status = StatusNeedFix
				f.Reasons = append(f.Reasons, evidence.ReasonWasteListParse)
			}
			if !EvidenceComplete(proof.Text) {
				f.Status = StatusNeedFix
				f.Reasons = append(f.Reasons, evidence.ReasonWasteFieldsWeak)
			}

			text := strings.ToLower(proof.Text)
			var missing []string
			for _, it := range items[:min(len(items), maxNameChecks)] {
				if !strings.Contains(text, strings.ToLower(it.Name)) {
					missing = append(missing, it.Name)
				}
			}
			if len(missing) > 0 {
				f.Status = StatusFail
				f.Reasons = append(f.Reasons, evidence.ReasonWasteNameMismatch)
				f.Extras.Coverage = &evidence.Coverage{MissingNames: missing}
			}
			return []Finding{f}
		},
	}
}

// Chemical is one inventory row and whether its MSDS is mandatory.
type Chemical struct {
	Name     string
	Required bool
}

// Chemicals reads the hazardous substance inventory. A missing MSDS_필수
// column or cell counts as required.
func Chemicals(t *evidence.Table) []Chemical {
	nameCol := t.Column("물질명")
	if t.Empty() || nameCol < 0 {
		return nil
	}
	reqCol := t.Column("MSDS_필수")

	var out []Chemical
	for r := range t.Rows {
		name := strings.TrimSpace(t.Cell(r, nameCol))
		if name == "" {
			continue
		}
		req := "Y"
		if reqCol >= 0 {
			req = strings.ToUpper(strings.TrimSpace(t.Cell(r, reqCol)))
		}
		out = append(out, Chemical{Name: name, Required: req == "Y"})
	}
	return out
}

// MissingMSDS splits chemicals not named in any MSDS text or file name
// into required and optional lists.
func MissingMSDS(chems []Chemical, docs []evidence.ExtractionResult) (required, optional []string) {
	var texts, names []string
	for _, d := range docs {
		texts = append(texts, d.Text)
		names = append(names, d.FileName)
	}
	text := strings.ToLower(strings.Join(texts, " "))
	files := strings.ToLower(strings.Join(names, " "))

	for _, c := range chems {
		n := strings.ToLower(c.Name)
		if strings.Contains(text, n) || strings.Contains(files, n) {
			continue
		}
		if c.Required {
			required = append(required, c.Name)
		} else {
			optional = append(optional, c.Name)
		}
	}
	return required, optional
}

func coverageCheck() Check {
	return Check{
		Name:  CoverageName,
		Title: "Inventory vs MSDS coverage",
		Emits: []string{
			evidence.ReasonInventoryParse,
			evidence.ReasonMSDSRequired,
			evidence.ReasonMSDSOptional,
		},
		Run: func(in Input) []Finding {
			inv, ok := in.First("esg.hazmat.inventory")
			if !ok {
				return nil
			}
			docs := in.All("esg.hazmat.msds")

			chems := Chemicals(inv.Table)
			if len(chems) == 0 {
				return []Finding{{Status: StatusNeedFix, Reasons: []string{evidence.ReasonInventoryParse}, FileIDs: ids(inv)}}
			}

			req, opt := MissingMSDS(chems, docs)
			f := Finding{
				Status:  StatusPass,
				FileIDs: ids(append([]evidence.ExtractionResult{inv}, docs...)...),
			}
			if len(req) > 0 || len(opt) > 0 {
				f.Extras.Coverage = &evidence.Coverage{MissingRequired: req, MissingOptional: opt}
			}
			switch {
			case len(req) > 0:
				f.Status = StatusFail
				f.Reasons = []string{evidence.ReasonMSDSRequired}
			case len(opt) > 0:
				f.Status = StatusWarn
				f.Reasons = []string{evidence.ReasonMSDSOptional}
			}
			return []Finding{f}
		},
	}
}

func pledgeCheck() Check {
	return Check{
		Name:  PledgeName,
		Title: "Pledge vs code revision",
		Emits: []string{evidence.ReasonPledgeBeforeReview},
		Run: func(in Input) []Finding {
			code, ok1 := in.First("esg.ethics.code")
			pledge, ok2 := in.First("esg.ethics.pledge")
			if !ok1 || !ok2 {
				return nil
			}

			rev, ok1 := evidence.FirstDate(code.Text)
			signed, ok2 := evidence.FirstDate(pledge.Text)
			if !ok1 || !ok2 || !signed.Before(rev) {
				return nil
			}

			return []Finding{{
				Status:  StatusWarn,
				Reasons: []string{evidence.ReasonPledgeBeforeReview},
				Extras: evidence.Extras{Revision: &evidence.RevisionDates{
					Revision: evidence.FormatDate(rev),
					Pledge:   evidence.FormatDate(signed),
				}},
				FileIDs: ids(code, pledge),
			}}
		},
	}
}
