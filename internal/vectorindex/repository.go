package vectorindex

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a vector index System backed by the given database.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "vectorindex"),
	}
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	var data []byte

	err := s.Scan(
		&e.ChunkID,
		&e.DocumentID,
		&e.ModelVersion,
		&data,
	)
	if err != nil {
		return Entry{}, err
	}

	e.Vector = decodeVector(data)
	return e, nil
}

func (r *repo) Upsert(ctx context.Context, entries []Entry) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO embeddings (chunk_id, document_id, model_version, vector)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (chunk_id, model_version) DO UPDATE SET
				vector = EXCLUDED.vector`,
		)
		if err != nil {
			return zero, err
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				e.ChunkID,
				e.DocumentID,
				e.ModelVersion,
				encodeVector(e.Vector),
			); err != nil {
				return zero, err
			}
		}

		return zero, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("embeddings stored", "count", len(entries))
	return nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Entry, error) {
	return repository.QueryMany(ctx, r.db, `
		SELECT e.chunk_id, e.document_id, e.model_version, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		WHERE e.document_id = $1
		ORDER BY c.index, e.model_version`,
		[]any{documentID},
		scanEntry,
	)
}

func (r *repo) QueryByVector(ctx context.Context, documentID uuid.UUID, vector []float32) ([]Match, error) {
	entries, err := r.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(entries))
	for _, e := range entries {
		score, err := Cosine(vector, e.Vector)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			Score:      score,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}

func (r *repo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM embeddings WHERE document_id = $1`,
		documentID,
	)
	return err
}
