// Package detector counts people in photos through an external object
// detection service.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

var (
	ErrDetectFailed    = errors.New("person detection failed")
	ErrInvalidResponse = errors.New("invalid detector response")
)

// Client posts image bytes to a detection endpoint. The endpoint answers
// with {"person_count": n}.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// New creates a detector client. A nil httpClient uses http.DefaultClient.
func New(endpoint string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		logger:   logger.With("system", "detector"),
	}
}

type countResponse struct {
	PersonCount *int `json:"person_count"`
}

// CountPersons returns the number of people the service found in data.
func (c *Client) CountPersons(ctx context.Context, data []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDetectFailed, err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDetectFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrDetectFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out countResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if out.PersonCount == nil || *out.PersonCount < 0 {
		return 0, fmt.Errorf("%w: missing or negative person_count", ErrInvalidResponse)
	}

	c.logger.DebugContext(ctx, "persons counted", "count", *out.PersonCount)
	return *out.PersonCount, nil
}
