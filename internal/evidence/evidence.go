// Package evidence defines the values that flow between pipeline stages:
// submitted file references, slot hints, per-file extraction results,
// per-slot verdicts, and the typed side-table attached to each of them.
package evidence

import (
	"slices"
	"time"
)

// FileKind is the coarse content family a file is routed by.
type FileKind string

const (
	KindDocument FileKind = "pdf"
	KindTabular  FileKind = "xlsx"
	KindImage    FileKind = "image"
)

// MatchReason records how a slot hint was produced.
type MatchReason string

const (
	MatchKeyword  MatchReason = "filename_keyword"
	MatchFallback MatchReason = "llm_filename"
)

// UnknownSlot collects files that arrive without a slot hint.
const UnknownSlot = "unknown"

// FileRef identifies one submitted file. It is owned by the caller.
type FileRef struct {
	FileID     string `json:"file_id"`
	StorageURI string `json:"storage_uri"`
	FileName   string `json:"file_name"`
}

// SlotHint assigns a file to a slot.
type SlotHint struct {
	FileID      string      `json:"file_id"`
	SlotName    string      `json:"slot_name"`
	Confidence  float64     `json:"confidence"`
	MatchReason MatchReason `json:"match_reason"`
}

// Period is the inclusive reporting window of a submission.
type Period struct {
	Start time.Time `json:"period_start"`
	End   time.Time `json:"period_end"`
}

// Contains reports whether d falls within the period, compared by calendar day.
func (p Period) Contains(d time.Time) bool {
	day := truncateDay(d)
	return !day.Before(truncateDay(p.Start)) && !day.After(truncateDay(p.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Table is a parsed spreadsheet: one header row followed by data rows.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column returns the index of the header equal to name, or -1.
func (t *Table) Column(name string) int {
	if t == nil {
		return -1
	}
	return slices.Index(t.Headers, name)
}

// Cell returns the value at row r and column c, or "" when out of range.
func (t *Table) Cell(r, c int) string {
	if t == nil || r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// ExtractionResult is the structured outcome of processing one file.
// It is created once by the extraction coordinator and not modified afterwards.
type ExtractionResult struct {
	FileID      string      `json:"file_id"`
	FileName    string      `json:"file_name"`
	SlotName    string      `json:"slot_name"`
	Kind        FileKind    `json:"file_type"`
	Period      Period      `json:"-"`
	Text        string      `json:"text,omitempty"`
	Table       *Table      `json:"-"`
	Preview     string      `json:"df_preview,omitempty"`
	Dates       []time.Time `json:"dates,omitempty"`
	DateInRange bool        `json:"date_in_range"`
	Reasons     []string    `json:"reasons"`
	Extras      Extras      `json:"extras"`
}

// SlotResult is the verdict for one slot or one cross-slot check.
type SlotResult struct {
	SlotName    string   `json:"slot_name"`
	DisplayName string   `json:"display_name,omitempty"`
	Verdict     Verdict  `json:"verdict"`
	Reasons     []string `json:"reasons"`
	FileIDs     []string `json:"file_ids"`
	FileNames   []string `json:"file_names"`
	Extras      Extras   `json:"extras"`
}

// Clarification is the human-facing message generated for one slot result.
type Clarification struct {
	SlotName string   `json:"slot_name"`
	Message  string   `json:"message"`
	Points   []string `json:"points"`
	FileIDs  []string `json:"file_ids"`
}
