package crosscheck_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/crosscheck"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/usage"
)

func ptr(n int) *int { return &n }

func photo(n int) evidence.ExtractionResult {
	return evidence.ExtractionResult{
		FileID: "photo",
		Kind:   evidence.KindImage,
		Extras: evidence.Extras{Persons: &evidence.PersonCounts{Count: ptr(n)}},
	}
}

func attendanceSheet(names ...string) string {
	var b strings.Builder
	b.WriteString("안전보건 교육 출석부\n번호 성명 부서 서명\n")
	for _, n := range names {
		b.WriteString(n + " 생산 " + n + "\n")
	}
	return b.String()
}

var eightNames = []string{"김민수", "이영희", "박지훈", "최수정", "정대현", "강서연", "조현우", "윤하늘"}

func run(t *testing.T, domain string, by map[string][]evidence.ExtractionResult) []evidence.SlotResult {
	t.Helper()
	s, ok := crosscheck.For(domain)
	if !ok {
		t.Fatalf("For(%s) not found", domain)
	}
	return s.Run(crosscheck.Input{BySlot: by})
}

func only(t *testing.T, results []evidence.SlotResult, name string) evidence.SlotResult {
	t.Helper()
	var found []evidence.SlotResult
	for _, r := range results {
		if r.SlotName == name {
			found = append(found, r)
		}
	}
	if len(found) != 1 {
		t.Fatalf("results named %s = %d, want 1 (%+v)", name, len(found), results)
	}
	return found[0]
}

func TestSuitesValidate(t *testing.T) {
	reg, err := catalog.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			d, err := reg.Domain(name)
			if err != nil {
				t.Fatalf("Domain(%s) error = %v", name, err)
			}
			s, ok := crosscheck.For(name)
			if !ok {
				t.Fatalf("For(%s) not found", name)
			}
			if err := s.Validate(d); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}

	if _, ok := crosscheck.For("finance"); ok {
		t.Error("For(finance) found, want none")
	}
}

func TestStatusVerdict(t *testing.T) {
	tests := []struct {
		status crosscheck.Status
		want   evidence.Verdict
	}{
		{crosscheck.StatusPass, evidence.Pass},
		{crosscheck.StatusWarn, evidence.NeedClarify},
		{crosscheck.StatusNeedClarify, evidence.NeedClarify},
		{crosscheck.StatusFail, evidence.NeedFix},
		{crosscheck.StatusNeedFix, evidence.NeedFix},
		{"UNKNOWN", evidence.NeedFix},
	}

	for _, tt := range tests {
		if got := tt.status.Verdict(); got != tt.want {
			t.Errorf("%s.Verdict() = %s, want %s", tt.status, got, tt.want)
		}
	}
}

func TestHeadcount(t *testing.T) {
	name := crosscheck.HeadcountName("safety")

	tests := []struct {
		name    string
		photo   int
		verdict evidence.Verdict
		reasons []string
	}{
		{"within tolerance", 10, evidence.Pass, []string{}},
		{"exact", 8, evidence.Pass, []string{}},
		{"beyond tolerance", 12, evidence.NeedFix, []string{evidence.ReasonHeadcountMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := run(t, "safety", map[string][]evidence.ExtractionResult{
				"safety.education.attendance": {{FileID: "att", Text: attendanceSheet(eightNames...)}},
				"safety.education.photo":      {photo(tt.photo)},
			})

			r := only(t, results, name)
			if r.Verdict != tt.verdict || !slices.Equal(r.Reasons, tt.reasons) {
				t.Errorf("headcount 8 vs %d = %s %v, want %s %v", tt.photo, r.Verdict, r.Reasons, tt.verdict, tt.reasons)
			}
			if h := r.Extras.Headcount; h == nil || h.Attendance != 8 || h.Photo != tt.photo || h.Tolerance != 2 {
				t.Errorf("Headcount = %+v", h)
			}
			if !slices.Equal(r.FileIDs, []string{"att", "photo"}) {
				t.Errorf("FileIDs = %v", r.FileIDs)
			}
		})
	}
}

func TestHeadcountSkipsAndFailures(t *testing.T) {
	name := crosscheck.HeadcountName("compliance")

	if results := run(t, "compliance", map[string][]evidence.ExtractionResult{
		"compliance.education.photo": {photo(3)},
	}); len(results) != 0 {
		t.Errorf("Run() without attendance = %+v, want none", results)
	}

	results := run(t, "compliance", map[string][]evidence.ExtractionResult{
		"compliance.education.attendance": {{FileID: "att", Text: "교육 결과 보고"}},
		"compliance.education.photo":      {photo(3)},
	})
	if r := only(t, results, name); !slices.Equal(r.Reasons, []string{evidence.ReasonAttendanceParse}) || r.Verdict != evidence.NeedFix {
		t.Errorf("unreadable attendance = %s %v", r.Verdict, r.Reasons)
	}

	results = run(t, "compliance", map[string][]evidence.ExtractionResult{
		"compliance.education.attendance": {{FileID: "att", Text: "김민수 서명\n이영희 서명\n"}},
		"compliance.education.photo":      {{FileID: "photo", Extras: evidence.Extras{SceneDescription: "a meeting room"}}},
	})
	if r := only(t, results, name); !slices.Equal(r.Reasons, []string{evidence.ReasonPhotoCountFailed}) {
		t.Errorf("uncounted photo = %v", r.Reasons)
	}
}

func TestCountRepeatedNames(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{"empty", "  ", 0, false},
		{"repeated names", attendanceSheet("김민수", "이영희", "박지훈"), 3, true},
		{"row numbers", "번호\n1\n2\n3\n4\n", 4, true},
		{"total line", "참석 인원 총 25 명", 25, true},
		{"nothing", "교육 출석부", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := crosscheck.CountRepeatedNames(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CountRepeatedNames(%q) = %d, %v, want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPhotoCount(t *testing.T) {
	tests := []struct {
		name   string
		extras evidence.Extras
		want   int
		wantOK bool
	}{
		{"person count", evidence.Extras{Persons: &evidence.PersonCounts{Count: ptr(7)}}, 7, true},
		{"objects", evidence.Extras{DetectedObjects: []string{"person", "chair", "person"}}, 2, true},
		{"scene", evidence.Extras{SceneDescription: "about 12 people seated"}, 12, true},
		{"none", evidence.Extras{SceneDescription: "empty hall"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := crosscheck.PhotoCount(tt.extras)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PhotoCount() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCompareHeadcount(t *testing.T) {
	tests := []struct {
		attendance, photo int
		wantStatus        crosscheck.Status
		wantDiff, wantTol int
	}{
		{8, 10, crosscheck.StatusPass, 2, 2},
		{8, 12, crosscheck.StatusNeedFix, 4, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d vs %d", tt.attendance, tt.photo), func(t *testing.T) {
			f := crosscheck.CompareHeadcount(tt.attendance, tt.photo)
			if f.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", f.Status, tt.wantStatus)
			}
			hc := f.Extras.Headcount
			if hc == nil || hc.Diff != tt.wantDiff || hc.Tolerance != tt.wantTol {
				t.Errorf("Headcount = %+v, want diff %d tolerance %d", hc, tt.wantDiff, tt.wantTol)
			}
		})
	}
}

func TestToleranceProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("tolerance is at least two", prop.ForAll(
		func(att int) bool {
			return crosscheck.Tolerance(att) >= 2
		},
		gen.IntRange(0, 2000),
	))

	properties.Property("small groups allow two", prop.ForAll(
		func(att int) bool {
			return crosscheck.Tolerance(att) == 2
		},
		gen.IntRange(0, 10),
	))

	properties.Property("counts within tolerance pass", prop.ForAll(
		func(att, delta int) bool {
			tol := crosscheck.Tolerance(att)
			photo := att + delta%(tol+1)
			return crosscheck.CompareHeadcount(att, photo).Status == crosscheck.StatusPass
		},
		gen.IntRange(0, 2000), gen.IntRange(0, 1000),
	))

	properties.Property("counts beyond tolerance need a fix", prop.ForAll(
		func(att, extra int) bool {
			photo := att + crosscheck.Tolerance(att) + extra
			f := crosscheck.CompareHeadcount(att, photo)
			return f.Status == crosscheck.StatusNeedFix &&
				slices.Equal(f.Reasons, []string{evidence.ReasonHeadcountMismatch})
		},
		gen.IntRange(0, 2000), gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}

func usageTable(timeCol, valueCol string, rows ...[]string) *evidence.Table {
	return &evidence.Table{Headers: []string{timeCol, valueCol}, Rows: rows}
}

func TestPeak(t *testing.T) {
	baseline := usageTable("date", "Usage_kWh", []string{"2024-07-01", "60"}, []string{"2024-07-01", "40"}, []string{"2024-07-02", "80"})

	tests := []struct {
		name    string
		peak    string
		verdict evidence.Verdict
		reasons []string
	}{
		{"fail band", "160", evidence.NeedFix, []string{evidence.ReasonPeakSpikeFail}},
		{"warn band", "130", evidence.NeedClarify, []string{evidence.ReasonPeakSpikeWarn}},
		{"normal", "110", evidence.Pass, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := usageTable("date", "Usage_kWh", []string{"2025-07-01", tt.peak}, []string{"2025-07-02", "90"})
			results := run(t, "esg", map[string][]evidence.ExtractionResult{
				"esg.energy.electricity.usage":          {{FileID: "cur", Table: current}},
				"esg.energy.electricity.usage.baseline": {{FileID: "base", Table: baseline}},
			})

			r := only(t, results, crosscheck.PeakName)
			if r.Verdict != tt.verdict || !slices.Equal(r.Reasons, tt.reasons) {
				t.Errorf("peak %s vs 100 = %s %v, want %s %v", tt.peak, r.Verdict, r.Reasons, tt.verdict, tt.reasons)
			}
			if r.Extras.Peak == nil || r.Extras.Peak.Baseline != 100 {
				t.Errorf("Peak = %+v", r.Extras.Peak)
			}
		})
	}
}

func TestPeakWithoutBaseline(t *testing.T) {
	results := run(t, "esg", map[string][]evidence.ExtractionResult{
		"esg.energy.electricity.usage": {{FileID: "cur", Table: usageTable("date", "Usage_kWh", []string{"2025-07-01", "10"})}},
	})

	r := only(t, results, crosscheck.PeakName)
	if r.Verdict != evidence.NeedClarify || !slices.Equal(r.Reasons, []string{evidence.ReasonBaselineMissing}) {
		t.Errorf("no baseline = %s %v, want NEED_CLARIFY [BASELINE_2024_MISSING]", r.Verdict, r.Reasons)
	}

	baseline := usageTable("date", "Usage_kWh", []string{"2024-07-01", "0"})
	results = run(t, "esg", map[string][]evidence.ExtractionResult{
		"esg.energy.electricity.usage":          {{FileID: "cur", Table: usageTable("date", "Usage_kWh", []string{"2025-07-01", "10"})}},
		"esg.energy.electricity.usage.baseline": {{FileID: "base", Table: baseline}},
	})
	if r := only(t, results, crosscheck.PeakName); !slices.Equal(r.Reasons, []string{evidence.ReasonBaselineInvalid}) {
		t.Errorf("zero baseline = %v, want [BASELINE_INVALID]", r.Reasons)
	}
}

func TestCompareBill(t *testing.T) {
	oct := usage.Month{Year: 2025, Month: 10}
	totals := map[usage.Month]float64{oct: 1000}

	tests := []struct {
		name      string
		bill      string
		tol       float64
		status    crosscheck.Status
		reasons   []string
		escalated bool
	}{
		{
			name:    "mismatch beyond one percent",
			bill:    "청구기간 2025.10.01 ~ 2025.10.31 당월 사용량 1,015 kWh",
			tol:     1.0,
			status:  crosscheck.StatusNeedFix,
			reasons: []string{evidence.ReasonBillMismatch},
		},
		{
			name:   "within two percent",
			bill:   "청구기간 2025.10.01 ~ 2025.10.31 당월 사용량 1,015 m3",
			tol:    2.0,
			status: crosscheck.StatusPass,
		},
		{
			name:      "escalated",
			bill:      "청구기간 2025.10.01 ~ 2025.10.31 당월 사용량 700 kWh",
			tol:       1.0,
			status:    crosscheck.StatusFail,
			reasons:   []string{evidence.ReasonBillMismatch},
			escalated: true,
		},
		{
			name:    "no period",
			bill:    "당월 사용량 1,000 kWh",
			tol:     1.0,
			status:  crosscheck.StatusNeedFix,
			reasons: []string{evidence.ReasonBillFieldsMissing},
		},
		{
			name:    "month without usage",
			bill:    "청구기간 2025.09.01 ~ 2025.09.30 당월 사용량 1,000 kWh",
			tol:     1.0,
			status:  crosscheck.StatusNeedFix,
			reasons: []string{evidence.ReasonBillFieldsMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := crosscheck.CompareBill(totals, usage.ParseBill(tt.bill), tt.tol, nil)
			if f.Status != tt.status || !slices.Equal(f.Reasons, tt.reasons) {
				t.Errorf("CompareBill(%q) = %s %v, want %s %v", tt.bill, f.Status, f.Reasons, tt.status, tt.reasons)
			}
			if tt.escalated && (f.Extras.Bill == nil || !f.Extras.Bill.Escalated) {
				t.Errorf("Bill = %+v, want escalated", f.Extras.Bill)
			}
		})
	}
}

func TestMonthMatch(t *testing.T) {
	results := run(t, "esg", map[string][]evidence.ExtractionResult{
		"esg.energy.electricity.usage": {{
			FileID: "usage",
			Table:  usageTable("date", "Usage_kWh", []string{"2025-10-01", "500"}, []string{"2025-10-15", "500"}),
		}},
		"esg.energy.electricity.bill": {{
			FileID: "bill",
			Text:   "청구기간 2025.10.01 ~ 2025.10.31 당월 사용량 1,015 kWh",
		}},
		"esg.energy.gas.usage": {{FileID: "gas", Table: usageTable("date", "usage", []string{"2025-10-01", "1"})}},
		"esg.energy.gas.bill":  {{FileID: "gbill", Text: "당월 사용량 10 m3"}},
	})

	r := only(t, results, "esg.energy.electricity.month_match")
	if r.Verdict != evidence.NeedFix || !slices.Equal(r.Reasons, []string{evidence.ReasonBillMismatch}) {
		t.Errorf("electricity = %s %v, want NEED_FIX [E3_BILL_MISMATCH]", r.Verdict, r.Reasons)
	}
	if b := r.Extras.Bill; b == nil || b.Month != "2025-10" || b.UsageTotal != 1000 || b.BillTotal != 1015 || b.Escalated {
		t.Errorf("Bill = %+v", b)
	}

	if g := only(t, results, "esg.energy.gas.month_match"); !slices.Equal(g.Reasons, []string{evidence.ReasonParseFailed}) {
		t.Errorf("gas = %v, want [PARSE_FAILED]", g.Reasons)
	}
}

func TestDisposal(t *testing.T) {
	list := &evidence.Table{
		Headers: []string{"처리일자", "물질명", "수량(kg)"},
		Rows: [][]string{
			{"2025-10-03", "폐유", "200"},
			{"2025-10-03", "폐산", "50"},
			{"", "폐알칼리", "10"},
		},
	}

	tests := []struct {
		name    string
		text    string
		verdict evidence.Verdict
		reasons []string
		missing []string
	}{
		{
			name:    "complete",
			text:    "2025.10.03 폐유 200 kg 폐산 50 kg 처리업체 ㈜그린",
			verdict: evidence.Pass,
			reasons: []string{},
		},
		{
			name:    "name missing",
			text:    "2025.10.03 폐유 200 kg 처리업체 ㈜그린",
			verdict: evidence.NeedFix,
			reasons: []string{evidence.ReasonWasteNameMismatch},
			missing: []string{"폐산"},
		},
		{
			name:    "weak evidence",
			text:    "폐유 폐산",
			verdict: evidence.NeedFix,
			reasons: []string{evidence.ReasonWasteFieldsWeak},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := run(t, "esg", map[string][]evidence.ExtractionResult{
				"esg.hazmat.disposal.list":     {{FileID: "list", Table: list}},
				"esg.hazmat.disposal.evidence": {{FileID: "proof", Text: tt.text}},
			})

			r := only(t, results, crosscheck.DisposalName)
			if r.Verdict != tt.verdict || !slices.Equal(r.Reasons, tt.reasons) {
				t.Errorf("disposal = %s %v, want %s %v", r.Verdict, r.Reasons, tt.verdict, tt.reasons)
			}
			if tt.missing != nil && (r.Extras.Coverage == nil || !slices.Equal(r.Extras.Coverage.MissingNames, tt.missing)) {
				t.Errorf("Coverage = %+v, want missing %v", r.Extras.Coverage, tt.missing)
			}
		})
	}

	results := run(t, "esg", map[string][]evidence.ExtractionResult{
		"esg.hazmat.disposal.list": {{FileID: "list", Table: list}},
	})
	if r := only(t, results, crosscheck.DisposalName); !slices.Equal(r.Reasons, []string{evidence.ReasonWasteEvidence}) {
		t.Errorf("list only = %v, want [E_WASTE_EVIDENCE_MISSING]", r.Reasons)
	}
}

func TestDisposalItems(t *testing.T) {
	tbl := &evidence.Table{
		Headers: []string{"Material", "Date"},
		Rows:    [][]string{{"Waste Oil", "2025-10-01"}, {"", "2025-10-02"}},
	}

	items := crosscheck.DisposalItems(tbl)
	if len(items) != 1 || items[0].Name != "Waste Oil" || items[0].Quantity != "" {
		t.Errorf("DisposalItems() = %+v", items)
	}

	if items := crosscheck.DisposalItems(&evidence.Table{Headers: []string{"Material"}, Rows: [][]string{{"x"}}}); items != nil {
		t.Errorf("DisposalItems() without date = %+v, want nil", items)
	}
}

func TestCoverage(t *testing.T) {
	inventory := &evidence.Table{
		Headers: []string{"물질명", "MSDS_필수"},
		Rows: [][]string{
			{"톨루엔", "Y"},
			{"아세톤", "n"},
			{"메탄올", "Y"},
		},
	}

	tests := []struct {
		name     string
		docs     []evidence.ExtractionResult
		verdict  evidence.Verdict
		reasons  []string
		required []string
		optional []string
	}{
		{
			name: "optional missing",
			docs: []evidence.ExtractionResult{
				{FileID: "m1", Text: "물질안전보건자료 톨루엔"},
				{FileID: "m2", FileName: "msds_메탄올.pdf"},
			},
			verdict:  evidence.NeedClarify,
			reasons:  []string{evidence.ReasonMSDSOptional},
			optional: []string{"아세톤"},
		},
		{
			name:     "required missing",
			docs:     []evidence.ExtractionResult{{FileID: "m1", Text: "톨루엔 아세톤"}},
			verdict:  evidence.NeedFix,
			reasons:  []string{evidence.ReasonMSDSRequired},
			required: []string{"메탄올"},
		},
		{
			name:    "covered",
			docs:    []evidence.ExtractionResult{{FileID: "m1", Text: "톨루엔 아세톤 메탄올"}},
			verdict: evidence.Pass,
			reasons: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := run(t, "esg", map[string][]evidence.ExtractionResult{
				"esg.hazmat.inventory": {{FileID: "inv", Table: inventory}},
				"esg.hazmat.msds":      tt.docs,
			})

			r := only(t, results, crosscheck.CoverageName)
			if r.Verdict != tt.verdict || !slices.Equal(r.Reasons, tt.reasons) {
				t.Errorf("coverage = %s %v, want %s %v", r.Verdict, r.Reasons, tt.verdict, tt.reasons)
			}
			if tt.required != nil && !slices.Equal(r.Extras.Coverage.MissingRequired, tt.required) {
				t.Errorf("MissingRequired = %v, want %v", r.Extras.Coverage.MissingRequired, tt.required)
			}
			if tt.optional != nil && !slices.Equal(r.Extras.Coverage.MissingOptional, tt.optional) {
				t.Errorf("MissingOptional = %v, want %v", r.Extras.Coverage.MissingOptional, tt.optional)
			}
		})
	}

	results := run(t, "esg", map[string][]evidence.ExtractionResult{
		"esg.hazmat.inventory": {{FileID: "inv", Table: &evidence.Table{Headers: []string{"name"}, Rows: [][]string{{"x"}}}}},
	})
	if r := only(t, results, crosscheck.CoverageName); !slices.Equal(r.Reasons, []string{evidence.ReasonInventoryParse}) {
		t.Errorf("unparsed inventory = %v", r.Reasons)
	}
}

func TestPledge(t *testing.T) {
	tests := []struct {
		name   string
		pledge string
		want   int
	}{
		{"before revision", "서약일 2025.03.02", 1},
		{"after revision", "서약일 2025-07-01", 0},
		{"undated", "서약서", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := run(t, "esg", map[string][]evidence.ExtractionResult{
				"esg.ethics.code":   {{FileID: "code", Text: "윤리강령 개정일 2025.06.01"}},
				"esg.ethics.pledge": {{FileID: "pledge", Text: tt.pledge}},
			})
			if len(results) != tt.want {
				t.Fatalf("Run() = %d results, want %d", len(results), tt.want)
			}
			if tt.want == 0 {
				return
			}
			r := results[0]
			if r.SlotName != crosscheck.PledgeName || r.Verdict != evidence.NeedClarify {
				t.Errorf("pledge = %s %s", r.SlotName, r.Verdict)
			}
			if rev := r.Extras.Revision; rev == nil || rev.Revision != "2025-06-01" || rev.Pledge != "2025-03-02" {
				t.Errorf("Revision = %+v", rev)
			}
		})
	}
}
