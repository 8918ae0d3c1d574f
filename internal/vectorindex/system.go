package vectorindex

import (
	"context"

	"github.com/google/uuid"
)

// System defines embedding storage and similarity query operations.
type System interface {
	// Upsert stores entries, replacing any existing vector for the same chunk.
	Upsert(ctx context.Context, entries []Entry) error

	// ListByDocument returns all stored entries for a document.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Entry, error)

	// QueryByVector ranks stored entries for a document against the query
	// vector and returns matches ordered by descending similarity.
	QueryByVector(ctx context.Context, documentID uuid.UUID, vector []float32) ([]Match, error)

	// DeleteByDocument removes all stored entries for a document.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}
