package extractors

import (
	"context"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extraction"
)

// Images reads the text visible in photos and scans it for dates.
type Images struct {
	ocr Recognizer
}

func NewImages(ocr Recognizer) *Images {
	return &Images{ocr: ocr}
}

// ExtractImage transcribes data. A recognition failure is returned so the
// caller can record the file as unreadable while still analyzing the scene.
func (i *Images) ExtractImage(ctx context.Context, data []byte, period evidence.Period) (extraction.Content, error) {
	if i.ocr == nil {
		return extraction.Content{}, ErrNoRecognizer
	}

	text, err := i.ocr.RecognizeImage(ctx, data)
	if err != nil {
		return extraction.Content{}, err
	}

	dates := evidence.ScanDates(text)
	inRange, reasons := period.DateFindings(dates)

	return extraction.Content{
		Text:        text,
		Dates:       dates,
		DateInRange: inRange,
		Reasons:     reasons,
	}, nil
}
