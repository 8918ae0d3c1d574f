package pipeline

import (
	"errors"

	"github.com/praval-labs/praval/internal/documents"
)

// Stage failure classes. Each class maps to a terminal stage:
// validation failures reject the document, extraction and exhausted
// transient failures fail it, and low-confidence results park it for
// human review.
var (
	ErrValidation    = errors.New("validation failed")
	ErrExtraction    = errors.New("extraction failed")
	ErrTransient     = errors.New("transient failure")
	ErrLowConfidence = errors.New("confidence below threshold")
)

// classify maps a stage failure to its terminal stage.
func classify(err error) documents.Stage {
	switch {
	case errors.Is(err, ErrValidation):
		return documents.StageRejected
	case errors.Is(err, ErrLowConfidence):
		return documents.StageHumanReview
	default:
		return documents.StageFailed
	}
}
