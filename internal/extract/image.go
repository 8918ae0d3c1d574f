package extract

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/praval-labs/praval/internal/ocr"
)

type imageProcessor struct {
	client ocr.Client
}

func (p *imageProcessor) Extract(ctx context.Context, data []byte, _ string) (*Result, error) {
	if p.client == nil {
		return nil, errors.New("ocr client not configured")
	}

	result, err := p.client.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	if result.Text == "" {
		return nil, errors.New("ocr produced no text")
	}

	return &Result{
		Text:       result.Text,
		Confidence: result.Confidence,
		Metadata: map[string]string{
			"ocr_words": strconv.Itoa(len(result.Words)),
		},
	}, nil
}
