package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// SlotStatus values reported by a preview.
const (
	StatusSubmitted = "SUBMITTED"
	StatusMissing   = "MISSING"
)

// PreviewRequest adds and removes files of a package and asks for the
// resulting slot coverage.
type PreviewRequest struct {
	Domain         string             `json:"domain"`
	PeriodStart    string             `json:"period_start"`
	PeriodEnd      string             `json:"period_end"`
	PackageID      string             `json:"package_id,omitempty"`
	AddedFiles     []evidence.FileRef `json:"added_files"`
	RemovedFileIDs []string           `json:"removed_file_ids,omitempty"`
}

// SlotStatus is the coverage of one catalog slot.
type SlotStatus struct {
	SlotName    string   `json:"slot_name"`
	DisplayName string   `json:"display_name"`
	Required    bool     `json:"required"`
	Status      string   `json:"status"`
	FileIDs     []string `json:"file_ids"`
}

// PreviewResponse is the accumulated state of a package after a preview.
type PreviewResponse struct {
	PackageID            string              `json:"package_id"`
	SlotHints            []evidence.SlotHint `json:"slot_hint"`
	RequiredSlotStatus   []SlotStatus        `json:"required_slot_status"`
	MissingRequiredSlots []string            `json:"missing_required_slots"`
}

// SubmitRequest runs the full pipeline over a package's files. An empty
// SlotHints uses the hints stored by earlier previews.
type SubmitRequest struct {
	PackageID   string              `json:"package_id"`
	Domain      string              `json:"domain"`
	PeriodStart string              `json:"period_start"`
	PeriodEnd   string              `json:"period_end"`
	Files       []evidence.FileRef  `json:"files"`
	SlotHints   []evidence.SlotHint `json:"slot_hint,omitempty"`
}

// ParsePeriod parses an inclusive YYYY-MM-DD period.
func ParsePeriod(start, end string) (evidence.Period, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return evidence.Period{}, fmt.Errorf("%w: period_start: %w", ErrInvalidRequest, err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return evidence.Period{}, fmt.Errorf("%w: period_end: %w", ErrInvalidRequest, err)
	}
	if e.Before(s) {
		return evidence.Period{}, fmt.Errorf("%w: period_end %s before period_start %s", ErrInvalidRequest, end, start)
	}
	return evidence.Period{Start: s, End: e}, nil
}

const fileRefSchema = `{
	"type": "object",
	"required": ["file_id", "storage_uri"],
	"properties": {
		"file_id": {"type": "string", "minLength": 1},
		"storage_uri": {"type": "string", "minLength": 1},
		"file_name": {"type": "string"}
	}
}`

var previewSchema = mustSchema("preview", `{
	"type": "object",
	"required": ["domain", "period_start", "period_end"],
	"properties": {
		"domain": {"type": "string", "minLength": 1},
		"period_start": {"type": "string", "format": "date"},
		"period_end": {"type": "string", "format": "date"},
		"package_id": {"type": ["string", "null"]},
		"added_files": {"type": ["array", "null"], "items": `+fileRefSchema+`},
		"removed_file_ids": {"type": ["array", "null"], "items": {"type": "string"}}
	}
}`)

var submitSchema = mustSchema("submit", `{
	"type": "object",
	"required": ["package_id", "domain", "period_start", "period_end", "files"],
	"properties": {
		"package_id": {"type": "string", "minLength": 1},
		"domain": {"type": "string", "minLength": 1},
		"period_start": {"type": "string", "format": "date"},
		"period_end": {"type": "string", "format": "date"},
		"files": {"type": "array", "items": `+fileRefSchema+`},
		"slot_hint": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["file_id", "slot_name"],
				"properties": {
					"file_id": {"type": "string", "minLength": 1},
					"slot_name": {"type": "string", "minLength": 1},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1},
					"match_reason": {"type": "string"}
				}
			}
		}
	}
}`)

func mustSchema(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	url := fmt.Sprintf("https://airun.schemas.local/run/%s.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("load %s schema: %v", name, err))
	}
	return c.MustCompile(url)
}

// DecodePreview validates body against the preview schema and decodes it.
func DecodePreview(body []byte) (PreviewRequest, error) {
	var req PreviewRequest
	err := decode(previewSchema, body, &req)
	return req, err
}

// DecodeSubmit validates body against the submit schema and decodes it.
func DecodeSubmit(body []byte) (SubmitRequest, error) {
	var req SubmitRequest
	err := decode(submitSchema, body, &req)
	return req, err
}

func decode(schema *jsonschema.Schema, body []byte, v any) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
