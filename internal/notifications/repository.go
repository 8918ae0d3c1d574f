package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/pagination"
	"github.com/praval-labs/praval/pkg/query"
	"github.com/praval-labs/praval/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a notification repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "notifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Enqueue(ctx context.Context, documentID uuid.UUID, events []Event) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var zero struct{}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM notifications WHERE document_id = $1`,
			documentID,
		); err != nil {
			return zero, err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO notifications (
				id, document_id, chunk_id, category,
				similarity, priority, recipients
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		)
		if err != nil {
			return zero, err
		}
		defer stmt.Close()

		for _, e := range events {
			recipients, err := json.Marshal(e.Recipients)
			if err != nil {
				return zero, err
			}

			if _, err := stmt.ExecContext(ctx,
				e.ID,
				documentID,
				e.ChunkID,
				e.Category,
				e.Similarity,
				e.Priority,
				recipients,
			); err != nil {
				return zero, err
			}
		}

		return zero, nil
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, e := range events {
		r.logger.Info("trigger notification",
			"document_id", documentID,
			"chunk_id", e.ChunkID,
			"category", e.Category,
			"similarity", e.Similarity,
			"priority", e.Priority,
		)
	}

	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Event], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Category", "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	events, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}

	result := pagination.NewPageResult(events, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Event, error) {
	qb := query.NewBuilder(projection, query.SortField{Field: "CreatedAt"})
	qb.WhereEquals("DocumentID", &documentID)

	q, args := qb.Build()
	return repository.QueryMany(ctx, r.db, q, args, scanEvent)
}
