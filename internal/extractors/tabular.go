package extractors

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extraction"
)

// previewRows bounds the data rows rendered into the text preview.
const previewRows = 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tables reads spreadsheets and CSV files into a header row and data rows.
type Tables struct {
	logger *slog.Logger
}

func NewTables(logger *slog.Logger) *Tables {
	return &Tables{logger: logger.With("extractor", "tabular")}
}

// ExtractTable parses data according to ext, checks that every expected
// header is contained in some actual header, and scans all cells for
// dates. Legacy .xls workbooks are routed here but fail with
// ErrLegacyWorkbook.
func (t *Tables) ExtractTable(ctx context.Context, ext string, data []byte, expected []string, period evidence.Period) (extraction.Content, error) {
	var (
		records [][]string
		err     error
	)

	switch ext {
	case ".csv":
		records, err = ReadCSV(data)
	case ".xlsx":
		records, err = ReadWorkbook(data)
	case ".xls":
		err = ErrLegacyWorkbook
	default:
		err = fmt.Errorf("%w: unsupported extension %q", ErrUnreadable, ext)
	}
	if err != nil {
		return extraction.Content{}, err
	}

	table := NewTable(records)

	var reasons []string
	if missing := MissingHeaders(table.Headers, expected); len(missing) > 0 {
		t.logger.DebugContext(ctx, "expected headers missing", "missing", missing)
		reasons = append(reasons, evidence.ReasonHeaderMismatch)
	}
	if table.Empty() {
		reasons = append(reasons, evidence.ReasonEmptyTable)
	}

	var dates []time.Time
	for _, row := range table.Rows {
		for _, cell := range row {
			dates = append(dates, evidence.ScanDates(cell)...)
		}
	}
	inRange, dateReasons := period.DateFindings(dates)
	reasons = append(reasons, dateReasons...)

	preview, err := Preview(table, previewRows)
	if err != nil {
		return extraction.Content{}, err
	}

	return extraction.Content{
		Table:       table,
		Preview:     preview,
		Dates:       dates,
		DateInRange: inRange,
		Reasons:     evidence.Dedupe(reasons),
	}, nil
}

// ReadCSV parses a CSV file, tolerating a byte order mark, ragged rows,
// and stray quotes.
func ReadCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return records, nil
}

// ReadWorkbook returns the rows of the first sheet of an xlsx workbook.
func ReadWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return rows, nil
}

// NewTable splits records into a trimmed header row and the data rows
// below it. Blank rows are dropped.
func NewTable(records [][]string) *evidence.Table {
	table := &evidence.Table{}

	for _, rec := range records {
		if blank(rec) {
			continue
		}
		if table.Headers == nil {
			table.Headers = make([]string, len(rec))
			for i, h := range rec {
				table.Headers[i] = strings.TrimSpace(h)
			}
			continue
		}
		table.Rows = append(table.Rows, rec)
	}

	return table
}

// MissingHeaders returns the expected headers that no actual header
// contains.
func MissingHeaders(actual, expected []string) []string {
	var missing []string
	for _, want := range expected {
		found := false
		for _, h := range actual {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// Preview renders the header and up to n data rows as CSV text.
func Preview(table *evidence.Table, n int) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(table.Headers) > 0 {
		if err := w.Write(table.Headers); err != nil {
			return "", err
		}
	}
	for _, row := range table.Rows[:min(n, len(table.Rows))] {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
