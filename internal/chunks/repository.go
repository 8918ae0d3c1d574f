package chunks

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a chunk System backed by the given database.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "chunks"),
	}
}

func scanChunk(s repository.Scanner) (Chunk, error) {
	var c Chunk
	var chunkType string

	err := s.Scan(
		&c.ID,
		&c.DocumentID,
		&c.Index,
		&c.Total,
		&c.Text,
		&chunkType,
		&c.Language,
		&c.WordCount,
		&c.Confidence,
	)
	if err != nil {
		return Chunk{}, err
	}

	c.Type = Type(chunkType)
	return c, nil
}

func (r *repo) ReplaceAll(ctx context.Context, documentID uuid.UUID, chunks []Chunk) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chunks WHERE document_id = $1`,
			documentID,
		); err != nil {
			return zero, err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (
				id, document_id, index, total, text,
				type, language, word_count, confidence
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		)
		if err != nil {
			return zero, err
		}
		defer stmt.Close()

		for _, c := range chunks {
			if _, err := stmt.ExecContext(ctx,
				c.ID,
				c.DocumentID,
				c.Index,
				c.Total,
				c.Text,
				string(c.Type),
				c.Language,
				c.WordCount,
				c.Confidence,
			); err != nil {
				return zero, err
			}
		}

		return zero, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("chunks replaced",
		"document_id", documentID,
		"count", len(chunks),
	)

	return nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Chunk, error) {
	return repository.QueryMany(ctx, r.db, `
		SELECT
			id, document_id, index, total, text,
			type, language, word_count, confidence
		FROM chunks
		WHERE document_id = $1
		ORDER BY index`,
		[]any{documentID},
		scanChunk,
	)
}

func (r *repo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_id = $1`,
		documentID,
	)
	return err
}
