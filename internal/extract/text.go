package extract

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

type textProcessor struct{}

func (p *textProcessor) Extract(_ context.Context, data []byte, _ string) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid utf-8")
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, errors.New("content is empty")
	}

	return &Result{
		Text:       text,
		Confidence: 1.0,
	}, nil
}
