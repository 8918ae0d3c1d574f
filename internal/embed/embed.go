// Package embed generates vector embeddings for chunks through an
// OpenAI-compatible embedding API. The Generator batches requests,
// retries failed items individually, and preserves chunk order.
package embed

import (
	"context"
	"errors"
)

// ErrEmpty indicates an embedding request produced no vector.
var ErrEmpty = errors.New("empty embedding returned")

// Service generates vector embeddings from text.
type Service interface {
	// EmbedBatch generates embeddings for texts, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the model, recorded with each stored vector.
	ModelName() string

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
