package rules_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/SmartChain-HD/AI/internal/catalog"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/rules"
)

var (
	now    = time.Date(2025, 11, 15, 9, 0, 0, 0, time.UTC)
	period = evidence.Period{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
)

func table(headers []string, rows ...[]string) *evidence.Table {
	return &evidence.Table{Headers: headers, Rows: rows}
}

func check(t *testing.T, set *rules.Set, slot string, kind evidence.FileKind, r evidence.ExtractionResult) rules.Findings {
	t.Helper()
	r.Period = period
	return set.WithClock(func() time.Time { return now }).Check(slot, kind, r)
}

func TestSetsValidateAgainstCatalog(t *testing.T) {
	reg, err := catalog.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range reg.Names() {
		set, ok := rules.For(name)
		if !ok {
			t.Fatalf("For(%q) ok = false", name)
		}
		d, _ := reg.Domain(name)
		if err := set.Validate(d); err != nil {
			t.Errorf("%s Validate() error = %v", name, err)
		}
	}

	if _, ok := rules.For("finance"); ok {
		t.Error("For(finance) ok = true, want false")
	}
}

func TestValidateRejectsUndeclared(t *testing.T) {
	reg, err := catalog.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	esg, _ := reg.Domain("esg")

	set := rules.Safety()
	set.Domain = "esg"
	if err := set.Validate(esg); err == nil {
		t.Error("Validate(safety rules on esg) error = nil, want error")
	}

	if err := rules.Safety().Validate(esg); err == nil {
		t.Error("Validate(domain mismatch) error = nil, want error")
	}
}

func TestFindingsApply(t *testing.T) {
	f := rules.Findings{
		Add:      []string{"B", "C"},
		Suppress: []string{"SIGNATURE_MISSING"},
	}

	got := f.Apply([]string{"SIGNATURE_MISSING", "B", "A"})
	if want := []string{"B", "A", "C"}; !slices.Equal(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
}

func TestUnknownSlotHasNoFindings(t *testing.T) {
	f := rules.Safety().Check("safety.tbm", evidence.KindDocument, evidence.ExtractionResult{})
	if len(f.Add) != 0 || len(f.Suppress) != 0 {
		t.Errorf("Check(safety.tbm) = %+v, want empty", f)
	}
}

func TestSafetyEducationStatus(t *testing.T) {
	headers := []string{"부서", "현재_이수율", "전월_이수율", "교육일"}

	tests := []struct {
		name string
		tbl  *evidence.Table
		want []string
	}{
		{"empty", table(headers), []string{evidence.ReasonEmptyTable}},
		{
			"healthy",
			table(headers, []string{"생산", "95", "90", "2025-10-01"}),
			nil,
		},
		{
			"low and zero",
			table(headers,
				[]string{"생산", "79", "75", "2025-10-01"},
				[]string{"물류", "0", "10", "2025-10-02"},
			),
			[]string{evidence.ReasonLowEducationRate, rules.CodeEduDeptZero},
		},
		{
			"swing",
			table(headers, []string{"생산", "95", "60", "2025-10-01"}),
			[]string{rules.CodeEduRateSpike},
		},
		{
			"future date",
			table(headers, []string{"생산", "95", "90", "2025-11-16"}),
			[]string{rules.CodeEduFutureDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Safety(), "safety.education.status", evidence.KindTabular, evidence.ExtractionResult{Table: tt.tbl})
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}

	f := check(t, rules.Safety(), "safety.education.status", evidence.KindDocument, evidence.ExtractionResult{})
	if len(f.Add) != 0 {
		t.Errorf("Check(pdf) = %v, want none", f.Add)
	}
}

func TestSafetyRiskAssessment(t *testing.T) {
	headers := []string{"순번", "감소대책(Action)", "담당자", "점검일"}

	tests := []struct {
		name string
		tbl  *evidence.Table
		want []string
	}{
		{
			"complete",
			table(headers,
				[]string{"1", "guard rail", "kim", "2025-10-01"},
				[]string{"2", "helmet", "lee", "2025-10-02"},
			),
			nil,
		},
		{
			"blank actions and dates",
			table(headers,
				[]string{"1", "", "kim", ""},
				[]string{"2", "nan", "lee", ""},
				[]string{"3", "helmet", "park", "2025-10-02"},
			),
			[]string{rules.CodeRiskActionMissing, rules.CodeRiskDateMissing},
		},
		{
			"no owner column",
			table([]string{"순번", "조치"}, []string{"1", "fence"}),
			[]string{rules.CodeRiskOwnerMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Safety(), "safety.risk.assessment", evidence.KindTabular, evidence.ExtractionResult{Table: tt.tbl})
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}

func TestSafetyManagementSystem(t *testing.T) {
	text := "1. 조직 및 책임\n2. 위험성 평가 절차\n3. 비상 대응\n4. 교육 계획"
	r := evidence.ExtractionResult{Text: text, Reasons: []string{evidence.ReasonSignatureMissing}}

	f := check(t, rules.Safety(), "safety.management.system", evidence.KindDocument, r)
	if want := []string{"MISSING_SECTION_IMPROVE"}; !slices.Equal(f.Add, want) {
		t.Errorf("Check() add = %v, want %v", f.Add, want)
	}
	if got := f.Apply(r.Reasons); !slices.Equal(got, []string{"MISSING_SECTION_IMPROVE"}) {
		t.Errorf("Apply() = %v, want signature suppressed", got)
	}
}

func TestSafetyFireInspection(t *testing.T) {
	headers := []string{"점검항목", "결과"}
	same := table(headers, []string{"a", "양호"}, []string{"b", "양호"}, []string{"c", "양호"})
	mixed := table(headers, []string{"a", "양호"}, []string{"b", "불량"}, []string{"c", "양호"})
	short := table(headers, []string{"a", "양호"}, []string{"b", "양호"})

	line := "소화기 압력 정상 확인 완료함"
	copied := strings.Repeat(line+"\n", 3)

	tests := []struct {
		name string
		kind evidence.FileKind
		r    evidence.ExtractionResult
		want []string
	}{
		{"all good", evidence.KindTabular, evidence.ExtractionResult{Table: same}, []string{rules.CodeFireAllGood}},
		{"mixed", evidence.KindTabular, evidence.ExtractionResult{Table: mixed}, nil},
		{"too few rows", evidence.KindTabular, evidence.ExtractionResult{Table: short}, nil},
		{"copy paste", evidence.KindDocument, evidence.ExtractionResult{Text: copied}, []string{rules.CodeFireCopyPaste}},
		{"short lines ignored", evidence.KindDocument, evidence.ExtractionResult{Text: "양호\n양호\n양호\n"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Safety(), "safety.fire.inspection", tt.kind, tt.r)
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
			if !slices.Contains(f.Suppress, evidence.ReasonSignatureMissing) {
				t.Error("Check() does not suppress SIGNATURE_MISSING")
			}
		})
	}
}

func TestComplianceContractSample(t *testing.T) {
	full := "2025년 표준 하도급 계약서\n선급금 지급\n지연이자\n목적물 인수\n기성금"

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"complete", full, nil},
		{"missing clause", strings.Replace(full, "기성금", "", 1), []string{rules.CodeKeywordMissing}},
		{"wrong year", strings.Replace(full, "2025", "2023", 1), []string{rules.CodeWrongYear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Compliance(), "compliance.contract.sample", evidence.KindDocument, evidence.ExtractionResult{Text: tt.text})
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}

	tbl := table([]string{"조항", "내용"},
		[]string{"선급금", "2025"}, []string{"지연이자", ""}, []string{"목적물", ""}, []string{"기성금", ""})
	f := check(t, rules.Compliance(), "compliance.contract.sample", evidence.KindTabular, evidence.ExtractionResult{Table: tbl})
	if len(f.Add) != 0 {
		t.Errorf("Check(table) = %v, want none", f.Add)
	}
}

func TestCompliancePrivacyEducation(t *testing.T) {
	headers := []string{"성명", "이수여부"}

	tests := []struct {
		name string
		kind evidence.FileKind
		r    evidence.ExtractionResult
		want []string
	}{
		{"empty table", evidence.KindTabular, evidence.ExtractionResult{Table: table(headers)}, []string{evidence.ReasonEmptyTable}},
		{
			"within limit",
			evidence.KindTabular,
			evidence.ExtractionResult{Table: table(headers,
				[]string{"a", "Y"}, []string{"b", "Y"}, []string{"c", "Y"}, []string{"d", "Y"}, []string{"e", "N"})},
			nil,
		},
		{
			"over limit",
			evidence.KindTabular,
			evidence.ExtractionResult{Table: table(headers,
				[]string{"a", "Y"}, []string{"b", "미이수"}, []string{"c", "N"})},
			[]string{evidence.ReasonLowEducationRate},
		},
		{
			"text lines",
			evidence.KindDocument,
			evidence.ExtractionResult{Text: "홍길동 영업 Y\n김철수 생산 N\n"},
			[]string{evidence.ReasonLowEducationRate},
		},
		{
			"no data",
			evidence.KindDocument,
			evidence.ExtractionResult{Text: "개인정보 교육 안내문"},
			[]string{rules.CodeDataNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Compliance(), "compliance.education.privacy", tt.kind, tt.r)
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}

func TestComplianceFairTrade(t *testing.T) {
	tests := []struct {
		name string
		r    evidence.ExtractionResult
		want []string
	}{
		{"table risk", evidence.ExtractionResult{Table: table([]string{"항목", "식별", "조치"}, []string{"하도급", "Y", "N"})}, []string{rules.CodeHighRiskDetected}},
		{"table resolved", evidence.ExtractionResult{Table: table([]string{"항목", "식별", "조치"}, []string{"하도급", "Y", "Y"})}, nil},
		{"text risk", evidence.ExtractionResult{Text: "대금지급 Y N\n"}, []string{rules.CodeHighRiskDetected}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Compliance(), "compliance.fair.trade", evidence.KindTabular, tt.r)
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}

func TestComplianceEducationPlan(t *testing.T) {
	f := check(t, rules.Compliance(), "compliance.education.plan", evidence.KindDocument,
		evidence.ExtractionResult{Text: "개인정보 보호 교육, 성희롱 예방 교육"})
	if want := []string{rules.CodeMissingMandatory}; !slices.Equal(f.Add, want) {
		t.Errorf("Check() = %v, want %v", f.Add, want)
	}
	if want := []string{"장애인", "산업안전"}; !slices.Equal(f.Extras.MissingFields, want) {
		t.Errorf("MissingFields = %v, want %v", f.Extras.MissingFields, want)
	}

	f = check(t, rules.Compliance(), "compliance.education.plan", evidence.KindDocument,
		evidence.ExtractionResult{Text: "개인정보, 성희롱, 장애인 인식개선"})
	if len(f.Add) != 0 {
		t.Errorf("Check(one missing) = %v, want none", f.Add)
	}
}

func TestComplianceContractStatus(t *testing.T) {
	headers := []string{"성명", "계약일", "상태"}

	ok := table(headers,
		[]string{"a", "2025-01-02", "체결"},
		[]string{"b", "2025-01-02", "체결"},
		[]string{"c", "", "체결"},
		[]string{"d", "2025-01-03", "체결"},
	)
	gap := table(headers,
		[]string{"a", "2025-01-02", "체결"},
		[]string{"b", "", "미체결"},
		[]string{"c", "2025-01-02", ""},
	)

	if f := check(t, rules.Compliance(), "compliance.contract.status", evidence.KindTabular, evidence.ExtractionResult{Table: ok}); len(f.Add) != 0 {
		t.Errorf("Check(ok) = %v, want none", f.Add)
	}
	f := check(t, rules.Compliance(), "compliance.contract.status", evidence.KindTabular, evidence.ExtractionResult{Table: gap})
	if want := []string{rules.CodeHighContractGap}; !slices.Equal(f.Add, want) {
		t.Errorf("Check(gap) = %v, want %v", f.Add, want)
	}
}

func TestCompliancePrivacyPolicy(t *testing.T) {
	tests := []struct {
		name string
		r    evidence.ExtractionResult
		want []string
	}{
		{"recent", evidence.ExtractionResult{Text: "개정일 2025.03.01"}, nil},
		{"outdated", evidence.ExtractionResult{Text: "제정 2019.01.01 개정 2023.06.30"}, []string{rules.CodePolicyOutdated}},
		{"table column", evidence.ExtractionResult{Table: table([]string{"항목", "개정일"}, []string{"a", "2022-01-01"})}, []string{rules.CodePolicyOutdated}},
		{"undated", evidence.ExtractionResult{Text: "개인정보 처리방침"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.Compliance(), "compliance.privacy.policy", evidence.KindDocument, tt.r)
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}

func TestComplianceEthicsReportYear(t *testing.T) {
	f := check(t, rules.Compliance(), "compliance.ethics.report", evidence.KindDocument, evidence.ExtractionResult{Text: "2024 윤리경영 보고서"})
	if want := []string{rules.CodeWrongYear}; !slices.Equal(f.Add, want) {
		t.Errorf("Check() = %v, want %v", f.Add, want)
	}
}

func meterRows(values ...float64) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{fmt.Sprintf("2025-10-%02d", i+1), fmt.Sprint(v)}
	}
	return rows
}

func TestESGElectricityUsage(t *testing.T) {
	headers := []string{"date", "Usage_kWh"}

	tests := []struct {
		name      string
		tbl       *evidence.Table
		want      []string
		wantSpike bool
	}{
		{"empty", table(headers), []string{evidence.ReasonParseFailed}, false},
		{"unit missing", table([]string{"date", "kwh"}, []string{"2025-10-01", "1"}), []string{evidence.ReasonHeaderMismatch, rules.CodeUnitMissing}, false},
		{"zero reading", &evidence.Table{Headers: headers, Rows: meterRows(1, 0, 2)}, []string{rules.CodeNegativeOrZero}, false},
		{"flat", &evidence.Table{Headers: headers, Rows: meterRows(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 11)}, nil, false},
		{"warn", &evidence.Table{Headers: headers, Rows: meterRows(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 13)}, []string{evidence.ReasonSpikeWarn}, true},
		{"fail", &evidence.Table{Headers: headers, Rows: meterRows(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 16)}, []string{evidence.ReasonSpikeFail}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.ESG(), "esg.energy.electricity.usage", evidence.KindTabular, evidence.ExtractionResult{Table: tt.tbl})
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
			if (f.Extras.Spike != nil) != tt.wantSpike {
				t.Errorf("Extras.Spike = %v, want set=%v", f.Extras.Spike, tt.wantSpike)
			}
		})
	}
}

func TestESGWaterUsageSkipsSpike(t *testing.T) {
	tbl := table([]string{"timestamp", "Usage_m3"})
	tbl.Rows = meterRows(10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 50)

	f := check(t, rules.ESG(), "esg.energy.water.usage", evidence.KindTabular, evidence.ExtractionResult{Table: tbl})
	if len(f.Add) != 0 {
		t.Errorf("Check() = %v, want none", f.Add)
	}
}

func TestESGEthicsCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "  ", []string{evidence.ReasonParseFailed}},
		{"complete", "부패 방지, 금품 수수 금지, 이해상충, 공정 거래, 인권 존중", nil},
		{"thin", "부패 방지, 금품 수수 금지", []string{rules.CodeSectionMissing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.ESG(), "esg.ethics.code", evidence.KindDocument, evidence.ExtractionResult{Text: tt.text})
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}

func TestESGPosterReadable(t *testing.T) {
	long := strings.Repeat("윤리경영 실천 ", 20)

	tests := []struct {
		name string
		r    evidence.ExtractionResult
		want []string
	}{
		{"readable", evidence.ExtractionResult{Text: long}, nil},
		{"short", evidence.ExtractionResult{Text: "윤리경영"}, []string{evidence.ReasonOCRUnreadable}},
		{"ocr failed", evidence.ExtractionResult{Text: long, Reasons: []string{evidence.ReasonOCRFailed}}, []string{evidence.ReasonOCRUnreadable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := check(t, rules.ESG(), "esg.ethics.poster.image", evidence.KindImage, tt.r)
			if !slices.Equal(f.Add, tt.want) {
				t.Errorf("Check() = %v, want %v", f.Add, tt.want)
			}
		})
	}
}
