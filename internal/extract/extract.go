// Package extract converts stored documents into plain text. Each
// document category has a dedicated processor; when the primary
// processor fails, a fixed-order fallback chain (text, then OCR) runs
// once per link, and documents that defeat the whole chain are
// surfaced for human review instead of failing the pipeline.
package extract

import (
	"context"
	"log/slog"

	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/ocr"
)

// Result is the outcome of text extraction for one document.
type Result struct {
	Text             string            `json:"text"`
	Confidence       float64           `json:"confidence"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ImageOnlyPages   []int             `json:"image_only_pages,omitempty"`
	RequiresViewer   bool              `json:"requires_viewer,omitempty"`
	NeedsHumanReview bool              `json:"needs_human_review,omitempty"`
}

// Processor extracts text from raw document bytes.
type Processor interface {
	Extract(ctx context.Context, data []byte, filename string) (*Result, error)
}

// Registry dispatches extraction by document category.
type Registry struct {
	processors map[string]Processor
	chain      []Processor
	logger     *slog.Logger
}

// NewRegistry creates a Registry with processors for every supported
// category. The OCR client serves the image processor, which is also
// the last link of the fallback chain.
func NewRegistry(ocrClient ocr.Client, logger *slog.Logger) *Registry {
	text := &textProcessor{}
	image := &imageProcessor{client: ocrClient}

	return &Registry{
		processors: map[string]Processor{
			documents.CategoryText:   text,
			documents.CategoryPDF:    &pdfProcessor{},
			documents.CategoryOffice: &officeProcessor{},
			documents.CategoryImage:  image,
			documents.CategoryCAD:    &cadProcessor{},
		},
		chain:  []Processor{text, image},
		logger: logger.With("system", "extract"),
	}
}

// Extract runs the processor for the given category. When the primary
// processor fails, the fallback chain runs in fixed order (text, then
// OCR), each link once, at halved confidence; a category with no
// registered processor goes straight through the chain at full
// confidence. When every link fails the result is empty with zero
// confidence and flagged for human review, and no error is returned.
func (r *Registry) Extract(ctx context.Context, category string, data []byte, filename string) (*Result, error) {
	primary, ok := r.processors[category]
	if ok {
		result, err := primary.Extract(ctx, data, filename)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("primary extraction failed, trying fallback chain",
			"category", category,
			"filename", filename,
			"error", err,
		)
	}

	for _, p := range r.chain {
		if p == primary {
			continue
		}
		result, err := p.Extract(ctx, data, filename)
		if err == nil {
			if ok {
				result.Confidence *= 0.5
			}
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return &Result{NeedsHumanReview: true}, nil
}
