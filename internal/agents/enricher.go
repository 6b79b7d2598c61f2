package agents

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"net/http"
	"time"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extraction"
	"github.com/SmartChain-HD/AI/internal/prompts"
)

// maxTextInput bounds the document text sent to the model.
const maxTextInput = 6000

type enrichResponse struct {
	Dates            []string `json:"dates"`
	HasSignature     bool     `json:"has_signature"`
	Summary          string   `json:"summary"`
	Anomalies        []string `json:"anomalies"`
	MissingFields    []string `json:"missing_fields"`
	Violations       []string `json:"violations"`
	DetectedObjects  []string `json:"detected_objects"`
	SceneDescription string   `json:"scene_description"`
	PersonCount      *int     `json:"person_count"`
}

// Enricher returns the per-file enricher for domain. The extraction
// coordinator throttles enrichment itself, so these calls skip the
// client's limiter.
func (c *Client) Enricher(domain string) extraction.Enricher {
	return &enricher{client: c, domain: domain}
}

type enricher struct {
	client *Client
	domain string
}

func (e *enricher) Enrich(ctx context.Context, req extraction.EnrichRequest) (extraction.Enrichment, error) {
	c := call{domain: e.domain, throttled: true}

	switch req.Kind {
	case evidence.KindDocument:
		c.stage = prompts.StageDocument
		c.input = "Document text:\n" + truncate(req.Content.Text, maxTextInput)
	case evidence.KindTabular:
		c.stage = prompts.StageTabular
		c.input = "Spreadsheet rows:\n" + req.Content.Preview
	case evidence.KindImage:
		uri, err := imageDataURI(req.Data)
		if err != nil {
			return extraction.Enrichment{}, err
		}
		c.stage = prompts.StageVision
		c.input = fmt.Sprintf("File name: %s\nSlot: %s", req.Name, req.Slot)
		c.images = []string{uri}
	default:
		return extraction.Enrichment{}, fmt.Errorf("enrich: unsupported kind %q", req.Kind)
	}

	resp, err := ask[enrichResponse](ctx, e.client, c)
	if err != nil {
		return extraction.Enrichment{}, err
	}
	return toEnrichment(resp), nil
}

func toEnrichment(r enrichResponse) extraction.Enrichment {
	out := extraction.Enrichment{
		HasSignature:    r.HasSignature,
		Anomalies:       r.Anomalies,
		MissingFields:   r.MissingFields,
		Violations:      r.Violations,
		PersonCount:     r.PersonCount,
		DetectedObjects: r.DetectedObjects,
		Scene:           r.SceneDescription,
		Summary:         r.Summary,
	}

	for _, s := range r.Dates {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			out.Dates = append(out.Dates, t)
		}
	}
	return out
}

// imageDataURI encodes a PNG or JPEG image for a vision call. JPEG input
// is re-encoded as PNG.
func imageDataURI(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
	case "image/jpeg":
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("re-encode image: %w", err)
		}
		data = buf.Bytes()
	default:
		return "", fmt.Errorf("%w: not a png or jpeg image", ErrUnsupportedImage)
	}

	uri, err := encoding.EncodeImageDataURI(data, document.PNG)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return uri, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
