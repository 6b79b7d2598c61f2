package extraction

import (
	"context"
	"time"

	"github.com/SmartChain-HD/AI/internal/evidence"
)

// Content is what an extractor reports for one file.
type Content struct {
	Text        string
	Table       *evidence.Table
	Preview     string
	Dates       []time.Time
	DateInRange bool
	Reasons     []string
}

// Fetcher retrieves the bytes behind a storage URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// DocumentExtractor reads text, dates, and signature evidence from a PDF.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, data []byte, period evidence.Period) (Content, error)
}

// TabularExtractor parses a spreadsheet and checks it for the expected
// headers. The name carries the extension that selects the format.
type TabularExtractor interface {
	ExtractTable(ctx context.Context, name string, data []byte, expected []string, period evidence.Period) (Content, error)
}

// ImageExtractor recognizes text in a photo or scan.
type ImageExtractor interface {
	ExtractImage(ctx context.Context, data []byte, period evidence.Period) (Content, error)
}

// Enrichment is the structured output of a model reading one file.
// Zero fields mean the model reported nothing for them.
type Enrichment struct {
	Dates           []time.Time
	HasSignature    bool
	Anomalies       []string
	MissingFields   []string
	Violations      []string
	PersonCount     *int
	DetectedObjects []string
	Scene           string
	Summary         string
}

// Enricher asks a model to read a file the deterministic extractor has
// already processed.
type Enricher interface {
	Enrich(ctx context.Context, req EnrichRequest) (Enrichment, error)
}

// EnrichRequest carries one file to an Enricher.
type EnrichRequest struct {
	Slot    string
	Kind    evidence.FileKind
	Name    string
	Data    []byte
	Content Content
}

// Detector counts people in an image.
type Detector interface {
	CountPersons(ctx context.Context, data []byte) (int, error)
}

// Collaborators bundles the external capabilities the coordinator calls.
// Enricher and Detector are optional.
type Collaborators struct {
	Fetcher   Fetcher
	Documents DocumentExtractor
	Tables    TabularExtractor
	Images    ImageExtractor
	Enricher  Enricher
	Detector  Detector
}
