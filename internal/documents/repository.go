package documents

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/pagination"
	"github.com/praval-labs/praval/pkg/query"
	"github.com/praval-labs/praval/pkg/repository"
	"github.com/praval-labs/praval/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	docClass := cmd.DocClass
	if docClass == "" {
		docClass = DocClassUnclassified
	}

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, filename, content_type, size_bytes, doc_class, stage, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, filename, content_type, size_bytes, category, detection_confidence,
			quality_score, quality_decision, language, needs_translation, doc_class,
			stage, errors, storage_key, uploaded_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		docClass,
		string(StageIngested),
		key,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocument)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "filename", d.Filename)
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) SetStage(ctx context.Context, id uuid.UUID, stage Stage, update StageUpdate) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if !doc.Stage.CanTransition(stage) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Stage, stage)
	}

	set := []string{"stage = $1", "updated_at = now()"}
	args := []any{string(stage)}
	n := 2

	appendField := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}

	if update.Category != nil {
		appendField("category", *update.Category)
	}
	if update.DetectionConfidence != nil {
		appendField("detection_confidence", *update.DetectionConfidence)
	}
	if update.QualityScore != nil {
		appendField("quality_score", *update.QualityScore)
	}
	if update.QualityDecision != nil {
		appendField("quality_decision", *update.QualityDecision)
	}
	if update.Language != nil {
		appendField("language", *update.Language)
	}
	if update.NeedsTranslation != nil {
		appendField("needs_translation", *update.NeedsTranslation)
	}

	q := fmt.Sprintf(
		"UPDATE documents SET %s WHERE id = $%d",
		strings.Join(set, ", "),
		n,
	)
	args = append(args, id)

	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("stage transition", "id", id, "from", doc.Stage, "to", stage)
	return nil
}

func (r *repo) RecordError(ctx context.Context, id uuid.UUID, msg string) error {
	q := `
		UPDATE documents
		SET errors = errors || to_jsonb(ARRAY[$1::text]), updated_at = now()
		WHERE id = $2`

	if err := repository.ExecExpectOne(ctx, r.db, q, msg, id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) GetStatus(ctx context.Context, id uuid.UUID) (*Status, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	status := doc.StatusView()
	return &status, nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
