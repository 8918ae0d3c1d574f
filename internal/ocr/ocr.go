// Package ocr provides a client for the external OCR service. Images
// are submitted in a single pass with both English and Malayalam
// enabled so mixed-script documents do not require a second round trip.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultLanguages is the recognition language set for every request.
const DefaultLanguages = "eng+mal"

var (
	ErrUnavailable = errors.New("ocr service unavailable")
	ErrBadResponse = errors.New("ocr service returned an invalid response")
)

// Word is a recognized token with its confidence as reported by the
// OCR engine, normalized to [0, 1].
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Result is the outcome of a recognition request.
type Result struct {
	Text       string  `json:"text"`
	Words      []Word  `json:"words"`
	Confidence float64 `json:"confidence"`
}

// MeanWordConfidence averages the per-word confidences. Returns 0 for
// a result with no words.
func (r Result) MeanWordConfidence() float64 {
	if len(r.Words) == 0 {
		return 0
	}

	var sum float64
	for _, w := range r.Words {
		sum += w.Confidence
	}
	return sum / float64(len(r.Words))
}

// Client defines the recognition operation. The pipeline depends on
// this interface so tests can substitute a fake service.
type Client interface {
	Recognize(ctx context.Context, image []byte) (*Result, error)
}

// Config holds OCR service connection settings.
type Config struct {
	Endpoint  string `toml:"endpoint"`
	Languages string `toml:"languages"`
	Timeout   string `toml:"timeout"`
}

type httpClient struct {
	endpoint  string
	languages string
	client    *http.Client
}

// NewClient creates an HTTP-backed OCR client from config. The timeout
// bounds each recognition call end to end.
func NewClient(cfg Config) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("ocr endpoint is required")
	}

	languages := cfg.Languages
	if languages == "" {
		languages = DefaultLanguages
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ocr timeout: %w", err)
		}
		timeout = d
	}

	return &httpClient{
		endpoint:  cfg.Endpoint,
		languages: languages,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type recognizeRequest struct {
	Image     string `json:"image"`
	Languages string `json:"languages"`
}

func (c *httpClient) Recognize(ctx context.Context, image []byte) (*Result, error) {
	body, err := json.Marshal(recognizeRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Languages: c.languages,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if result.Confidence == 0 {
		result.Confidence = result.MeanWordConfidence()
	}

	return &result, nil
}
