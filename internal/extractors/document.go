package extractors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extraction"
)

// A page with at most shortPageChars characters of native text counts as
// scanned; recognition runs when shortPageRatio of the pages are scanned.
const (
	shortPageChars = 30
	shortPageRatio = 0.20
)

var (
	signaturePattern = regexp.MustCompile(`(?i)(서명|sign|signature|\(인\)|날인)`)
	showText         = regexp.MustCompile(`\[((?:\\.|[^\]])*)\]\s*TJ|(\((?:\\.|[^\\)])*\))\s*(?:Tj|'|")`)
	literal          = regexp.MustCompile(`\((?:\\.|[^\\)])*\)`)
)

// Documents extracts text, dates, and signature evidence from PDFs.
type Documents struct {
	ocr    Recognizer
	logger *slog.Logger
}

// NewDocuments creates a PDF extractor. ocr may be nil, in which case
// scanned pages are left unread.
func NewDocuments(ocr Recognizer, logger *slog.Logger) *Documents {
	return &Documents{
		ocr:    ocr,
		logger: logger.With("extractor", "document"),
	}
}

// ExtractDocument reads the native text of every page, falls back to
// recognition for scanned documents, and checks dates and signatures.
func (d *Documents) ExtractDocument(ctx context.Context, data []byte, period evidence.Period) (extraction.Content, error) {
	pages, err := PageTexts(data)
	if err != nil {
		return extraction.Content{}, err
	}

	text := strings.Join(pages, "\n")
	var reasons []string

	if NeedsRecognition(pages) && d.ocr != nil {
		recognized, err := d.ocr.RecognizeDocument(ctx, data)
		switch {
		case err != nil:
			d.logger.WarnContext(ctx, "recognition failed", "pages", len(pages), "error", err)
			reasons = append(reasons, evidence.ReasonOCRFailed)
		case len([]rune(recognized)) > len([]rune(text)):
			text = recognized
		}
	}

	if strings.TrimSpace(text) == "" {
		reasons = append(reasons, evidence.ReasonOCRFailed)
	}

	dates := evidence.ScanDates(text)
	inRange, dateReasons := period.DateFindings(dates)
	reasons = append(reasons, dateReasons...)

	if !signaturePattern.MatchString(text) {
		reasons = append(reasons, evidence.ReasonSignatureMissing)
	}

	return extraction.Content{
		Text:        text,
		Dates:       dates,
		DateInRange: inRange,
		Reasons:     evidence.Dedupe(reasons),
	}, nil
}

// NeedsRecognition reports whether enough pages carry too little native
// text to trust it.
func NeedsRecognition(pages []string) bool {
	if len(pages) == 0 {
		return false
	}

	short := 0
	for _, p := range pages {
		if len([]rune(strings.TrimSpace(p))) <= shortPageChars {
			short++
		}
	}
	return float64(short)/float64(len(pages)) >= shortPageRatio
}

// PageTexts validates a PDF and returns the text shown on each page.
// Text drawn with embedded CID fonts is not decoded and reads as empty.
func PageTexts(data []byte) ([]string, error) {
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPDF, err)
	}

	pages := make([]string, pdfCtx.PageCount)
	for i := range pages {
		r, err := pdfcpu.ExtractPageContent(pdfCtx, i+1)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		pages[i] = ContentText(content)
	}

	return pages, nil
}

// ContentText collects the literal strings shown by a page content stream.
func ContentText(content []byte) string {
	var parts []string
	for _, m := range showText.FindAllSubmatch(content, -1) {
		if m[1] == nil {
			lit := m[2]
			parts = append(parts, unescape(lit[1:len(lit)-1]))
			continue
		}

		var sb strings.Builder
		for _, lit := range literal.FindAll(m[1], -1) {
			sb.WriteString(unescape(lit[1 : len(lit)-1]))
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, " ")
}

func unescape(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' || i+1 == len(b) {
			sb.WriteByte(c)
			continue
		}

		i++
		switch b[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(string(b[i:j]), 8, 8)
			sb.WriteByte(byte(n))
			i = j - 1
		default:
			sb.WriteByte(b[i])
		}
	}
	return sb.String()
}
