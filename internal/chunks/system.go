package chunks

import (
	"context"

	"github.com/google/uuid"
)

// System defines chunk storage operations.
type System interface {
	// ReplaceAll atomically replaces every chunk for a document.
	// Re-runs of the chunking stage always produce a full replacement set.
	ReplaceAll(ctx context.Context, documentID uuid.UUID, chunks []Chunk) error

	// ListByDocument returns all chunks for a document in ordinal order.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Chunk, error)

	// DeleteByDocument removes all chunks for a document.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}
