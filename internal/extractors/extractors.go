// Package extractors implements the deterministic per-kind extractors:
// PDF documents, spreadsheets, and images. Text that cannot be read
// natively is delegated to a Recognizer.
package extractors

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidPDF   = errors.New("invalid pdf")
	ErrUnreadable   = errors.New("unreadable spreadsheet")
	ErrNoRecognizer = errors.New("no text recognizer configured")

	// ErrLegacyWorkbook wraps ErrUnreadable for BIFF .xls workbooks.
	ErrLegacyWorkbook = fmt.Errorf("%w: legacy .xls workbook, resave as .xlsx", ErrUnreadable)
)

// Recognizer transcribes text from rendered pages or photos.
type Recognizer interface {
	RecognizeDocument(ctx context.Context, data []byte) (string, error)
	RecognizeImage(ctx context.Context, data []byte) (string, error)
}
