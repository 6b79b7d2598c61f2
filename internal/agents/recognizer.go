package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"github.com/JaimeStill/document-context/pkg/image"
	"golang.org/x/sync/errgroup"

	"github.com/SmartChain-HD/AI/internal/prompts"
)

// maxRecognizePages bounds how many PDF pages are transcribed per file.
const maxRecognizePages = 10

type recognizeResponse struct {
	Text string `json:"text"`
}

// RecognizeImage transcribes the text in a PNG or JPEG image.
func (c *Client) RecognizeImage(ctx context.Context, data []byte) (string, error) {
	uri, err := imageDataURI(data)
	if err != nil {
		return "", err
	}
	return c.recognize(ctx, uri)
}

// RecognizeDocument renders each page of a PDF and transcribes it. Pages
// are transcribed concurrently and joined in page order.
func (c *Client) RecognizeDocument(ctx context.Context, data []byte) (string, error) {
	images, err := renderPages(ctx, data)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), len(images)), 1))

	for i, img := range images {
		g.Go(func() error {
			uri, err := encoding.EncodeImageDataURI(img, document.PNG)
			if err != nil {
				return fmt.Errorf("page %d: encode image: %w", i+1, err)
			}

			text, err := c.recognize(gctx, uri)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(texts, "\n"), nil
}

func (c *Client) recognize(ctx context.Context, uri string) (string, error) {
	resp, err := ask[recognizeResponse](ctx, c, call{
		stage:  prompts.StageRecognize,
		images: []string{uri},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func renderPages(ctx context.Context, data []byte) ([][]byte, error) {
	tempDir, err := os.MkdirTemp("", "airun-render-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp directory: %w", ErrRenderFailed, err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return nil, fmt.Errorf("%w: write temp pdf: %w", ErrRenderFailed, err)
	}

	pdfDoc, err := document.OpenPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %w", ErrRenderFailed, err)
	}
	defer pdfDoc.Close()

	renderer, err := image.NewImageMagickRenderer(config.DefaultImageConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: create renderer: %w", ErrRenderFailed, err)
	}

	pages, err := pdfDoc.ExtractAllPages()
	if err != nil {
		return nil, fmt.Errorf("%w: extract pages: %w", ErrRenderFailed, err)
	}
	if len(pages) > maxRecognizePages {
		pages = pages[:maxRecognizePages]
	}

	images := make([][]byte, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := page.ToImage(renderer, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %w", ErrRenderFailed, i+1, err)
		}
		images[i] = img
	}

	return images, nil
}
