package trigger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/notifications"
	"github.com/praval-labs/praval/internal/vectorindex"
)

// Engine scans a document's embeddings against category centroids.
type Engine struct {
	cache  *Cache
	logger *slog.Logger
}

// NewEngine creates an Engine over the given centroid cache.
func NewEngine(cache *Cache, logger *slog.Logger) *Engine {
	return &Engine{
		cache:  cache,
		logger: logger.With("system", "trigger"),
	}
}

// Scan compares every stored embedding for the document against every
// category centroid and returns one event per chunk-category pair
// meeting the category threshold. A chunk may fire multiple
// categories.
func (e *Engine) Scan(ctx context.Context, documentID uuid.UUID, entries []vectorindex.Entry) ([]notifications.Event, error) {
	centroids, err := e.cache.Centroids(ctx)
	if err != nil {
		return nil, err
	}

	var events []notifications.Event
	for _, entry := range entries {
		for _, c := range centroids {
			sim, err := vectorindex.Cosine(entry.Vector, c.vector)
			if err != nil {
				return nil, err
			}

			if sim < c.category.Threshold {
				continue
			}

			events = append(events, notifications.Event{
				ID:         uuid.New(),
				DocumentID: documentID,
				ChunkID:    entry.ChunkID,
				Category:   c.category.Name,
				Similarity: sim,
				Priority:   c.category.Priority,
				Recipients: c.category.Recipients,
			})
		}
	}

	e.logger.Debug("scan complete",
		"document_id", documentID,
		"chunks", len(entries),
		"events", len(events),
	)

	return events, nil
}
