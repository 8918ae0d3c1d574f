package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/praval-labs/praval/internal/chunks"
	"github.com/praval-labs/praval/internal/vectorindex"
)

// Generator embeds chunk sets in bounded batches. A failed batch falls
// back to per-chunk requests with retries so one bad item cannot sink
// the whole document.
type Generator struct {
	service   Service
	batchSize int
	retries   int
	backoff   time.Duration
	logger    *slog.Logger
}

// NewGenerator creates a Generator over the given service.
func NewGenerator(service Service, batchSize, retries int, backoff time.Duration, logger *slog.Logger) *Generator {
	if batchSize < 1 {
		batchSize = 16
	}
	if retries < 0 {
		retries = 0
	}

	return &Generator{
		service:   service,
		batchSize: batchSize,
		retries:   retries,
		backoff:   backoff,
		logger:    logger.With("system", "embed"),
	}
}

// Generate embeds every chunk and returns index entries in chunk
// order, each tagged with the generating model's name.
func (g *Generator) Generate(ctx context.Context, set []chunks.Chunk) ([]vectorindex.Entry, error) {
	entries := make([]vectorindex.Entry, 0, len(set))

	for start := 0; start < len(set); start += g.batchSize {
		end := min(start+g.batchSize, len(set))
		batch := set[start:end]

		vectors, err := g.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}

		for i, c := range batch {
			entries = append(entries, vectorindex.Entry{
				ChunkID:      c.ID,
				DocumentID:   c.DocumentID,
				ModelVersion: g.service.ModelName(),
				Vector:       vectors[i],
			})
		}
	}

	return entries, nil
}

func (g *Generator) embedBatch(ctx context.Context, batch []chunks.Chunk) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := g.service.EmbedBatch(ctx, texts)
	if err == nil {
		return vectors, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	g.logger.Warn("batch embedding failed, retrying per chunk",
		"batch_size", len(batch),
		"error", err,
	)

	vectors = make([][]float32, len(batch))
	for i, text := range texts {
		vec, err := g.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", batch[i].ID, err)
		}
		vectors[i] = vec
	}

	return vectors, nil
}

func (g *Generator) embedOne(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 && g.backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff * time.Duration(1<<(attempt-1))):
			}
		}

		vecs, err := g.service.EmbedBatch(ctx, []string{text})
		if err == nil && len(vecs) == 1 {
			return vecs[0], nil
		}
		if err == nil {
			err = ErrEmpty
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
