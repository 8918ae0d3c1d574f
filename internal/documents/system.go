package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SetStage persists a stage transition together with any stage-produced
	// fields. It validates the transition against the stage machine and
	// returns ErrInvalidTransition for illegal moves.
	SetStage(ctx context.Context, id uuid.UUID, stage Stage, update StageUpdate) error

	// RecordError appends a human-readable error message to the document's
	// error list without changing its stage.
	RecordError(ctx context.Context, id uuid.UUID, msg string) error

	// GetStatus returns the externally visible processing status.
	GetStatus(ctx context.Context, id uuid.UUID) (*Status, error)
}
