package extractors_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extractors"
)

var march = evidence.Period{
	Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (r *fakeRecognizer) RecognizeDocument(context.Context, []byte) (string, error) {
	r.calls++
	return r.text, r.err
}

func (r *fakeRecognizer) RecognizeImage(context.Context, []byte) (string, error) {
	r.calls++
	return r.text, r.err
}

// buildPDF writes a minimal single-font PDF with one page per content
// stream, computing the cross-reference offsets.
func buildPDF(contents ...string) []byte {
	n := len(contents)
	fontObj := 3 + 2*n

	var objs []string
	kids := make([]string, n)
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	)
	for i, c := range contents {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c),
		)
	}
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return []byte(b.String())
}

func textPage(lines ...string) string {
	var b strings.Builder
	b.WriteString("BT /F1 12 Tf 72 720 Td ")
	for _, l := range lines {
		fmt.Fprintf(&b, "(%s) Tj 0 -14 Td ", l)
	}
	b.WriteString("ET")
	return b.String()
}

func TestContentText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"show text", "BT (Hello) Tj ET", "Hello"},
		{"array", "BT [(Wor) -20 (ld)] TJ ET", "World"},
		{"in order", "BT (A) Tj [(B) 5 (C)] TJ (D) ' ET", "A BC D"},
		{"escaped paren", `BT (a\(b\)) Tj ET`, "a(b)"},
		{"octal", `BT (\101\102) Tj ET`, "AB"},
		{"newline escape", `BT (x\ny) Tj ET`, "x\ny"},
		{"no text", "0 0 m 10 10 l S", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractors.ContentText([]byte(tt.content)); got != tt.want {
				t.Errorf("ContentText(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestNeedsRecognition(t *testing.T) {
	long := strings.Repeat("native text ", 5)

	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"no pages", nil, false},
		{"all text", []string{long, long, long, long, long}, false},
		{"one in five short", []string{long, long, long, long, "p.1"}, true},
		{"one in six short", []string{long, long, long, long, long, ""}, false},
		{"scanned", []string{"", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractors.NeedsRecognition(tt.pages); got != tt.want {
				t.Errorf("NeedsRecognition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractDocument(t *testing.T) {
	body := "Safety training record for all site workers held on 2025.03.14 " +
		"Trainer signature"
	data := buildPDF(textPage(body))

	got, err := extractors.NewDocuments(nil, discard()).ExtractDocument(context.Background(), data, march)
	require.NoError(t, err)

	assert.Contains(t, got.Text, "2025.03.14")
	assert.Equal(t, []time.Time{time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)}, got.Dates)
	assert.True(t, got.DateInRange)
	assert.Empty(t, got.Reasons)
}

func TestExtractDocumentFindings(t *testing.T) {
	body := "Quarterly inspection checklist completed by the site manager on 2025-04-02"
	data := buildPDF(textPage(body))

	got, err := extractors.NewDocuments(nil, discard()).ExtractDocument(context.Background(), data, march)
	require.NoError(t, err)

	assert.False(t, got.DateInRange)
	assert.ElementsMatch(t, []string{evidence.ReasonDateMismatch, evidence.ReasonSignatureMissing}, got.Reasons)
}

func TestExtractDocumentRecognition(t *testing.T) {
	data := buildPDF("0 0 m 10 10 l S")

	t.Run("recognized text replaces empty pages", func(t *testing.T) {
		ocr := &fakeRecognizer{text: "교육일 2025년 3월 5일 서명"}
		got, err := extractors.NewDocuments(ocr, discard()).ExtractDocument(context.Background(), data, march)
		require.NoError(t, err)

		assert.Equal(t, 1, ocr.calls)
		assert.Equal(t, ocr.text, got.Text)
		assert.True(t, got.DateInRange)
		assert.Empty(t, got.Reasons)
	})

	t.Run("recognition failure", func(t *testing.T) {
		ocr := &fakeRecognizer{err: errors.New("render failed")}
		got, err := extractors.NewDocuments(ocr, discard()).ExtractDocument(context.Background(), data, march)
		require.NoError(t, err)

		assert.Contains(t, got.Reasons, evidence.ReasonOCRFailed)
		assert.Contains(t, got.Reasons, evidence.ReasonNoDateFound)
	})
}

func TestExtractDocumentInvalid(t *testing.T) {
	_, err := extractors.NewDocuments(nil, discard()).ExtractDocument(context.Background(), []byte("not a pdf"), march)
	if !errors.Is(err, extractors.ErrInvalidPDF) {
		t.Errorf("ExtractDocument() error = %v, want ErrInvalidPDF", err)
	}
}

func TestMissingHeaders(t *testing.T) {
	tests := []struct {
		name     string
		actual   []string
		expected []string
		want     []string
	}{
		{"exact", []string{"이름", "부서"}, []string{"이름", "부서"}, nil},
		{"contained", []string{"교육 이수 여부", "성명"}, []string{"이수"}, nil},
		{"missing", []string{"이름"}, []string{"이름", "서명"}, []string{"서명"}},
		{"no expectation", []string{"a"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractors.MissingHeaders(tt.actual, tt.expected)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTableCSV(t *testing.T) {
	csv := "\xEF\xBB\xBF name , dept, date\nkim,ops,2025-03-04\n\nlee,qa\n"

	got, err := extractors.NewTables(discard()).ExtractTable(context.Background(), ".csv", []byte(csv), []string{"name", "date"}, march)
	require.NoError(t, err)

	require.NotNil(t, got.Table)
	assert.Equal(t, []string{"name", "dept", "date"}, got.Table.Headers)
	assert.Len(t, got.Table.Rows, 2)
	assert.True(t, got.DateInRange)
	assert.Empty(t, got.Reasons)
	assert.True(t, strings.HasPrefix(got.Preview, "name,dept,date\n"))
}

func TestExtractTableFindings(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{"header mismatch", "a,b\n2025-03-01,x\n", []string{evidence.ReasonHeaderMismatch}},
		{"empty", "name,date\n", []string{evidence.ReasonEmptyTable, evidence.ReasonNoDateFound}},
		{"out of period", "name,date\nkim,2024-12-31\n", []string{evidence.ReasonDateMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractors.NewTables(discard()).ExtractTable(context.Background(), ".csv", []byte(tt.csv), []string{"name"}, march)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got.Reasons)
		})
	}
}

func TestExtractTableWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"사업장", "사용량(kWh)", "청구기간"}))
	for i := range 25 {
		cell := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow(sheet, cell, &[]any{"본사", 1000 + i, "2025.03.10"}))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := extractors.NewTables(discard()).ExtractTable(context.Background(), ".xlsx", buf.Bytes(), []string{"사용량"}, march)
	require.NoError(t, err)

	assert.Len(t, got.Table.Rows, 25)
	assert.Len(t, got.Dates, 25)
	assert.Empty(t, got.Reasons)
	assert.Equal(t, 21, strings.Count(got.Preview, "\n"))
}

func TestExtractTableUnreadable(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data []byte
	}{
		{"legacy xls", ".xls", []byte{0xD0, 0xCF, 0x11, 0xE0}},
		{"corrupt xlsx", ".xlsx", []byte("PK not really")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractors.NewTables(discard()).ExtractTable(context.Background(), tt.ext, tt.data, nil, march)
			if !errors.Is(err, extractors.ErrUnreadable) {
				t.Errorf("ExtractTable(%s) error = %v, want ErrUnreadable", tt.ext, err)
			}
			if legacy := errors.Is(err, extractors.ErrLegacyWorkbook); legacy != (tt.ext == ".xls") {
				t.Errorf("ExtractTable(%s) legacy = %v, error = %v", tt.ext, legacy, err)
			}
		})
	}
}

func TestExtractImage(t *testing.T) {
	t.Run("dates in text", func(t *testing.T) {
		ocr := &fakeRecognizer{text: "TBM 2025/03/21 08:00"}
		got, err := extractors.NewImages(ocr).ExtractImage(context.Background(), []byte("img"), march)
		require.NoError(t, err)
		assert.True(t, got.DateInRange)
		assert.Empty(t, got.Reasons)
	})

	t.Run("no text", func(t *testing.T) {
		got, err := extractors.NewImages(&fakeRecognizer{}).ExtractImage(context.Background(), []byte("img"), march)
		require.NoError(t, err)
		assert.Equal(t, []string{evidence.ReasonNoDateFound}, got.Reasons)
	})

	t.Run("recognition failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := extractors.NewImages(&fakeRecognizer{err: boom}).ExtractImage(context.Background(), nil, march)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no recognizer", func(t *testing.T) {
		_, err := extractors.NewImages(nil).ExtractImage(context.Background(), nil, march)
		assert.ErrorIs(t, err, extractors.ErrNoRecognizer)
	})
}
