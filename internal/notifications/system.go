package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/pkg/pagination"
)

// System defines trigger notification operations.
type System interface {
	Handler() *Handler

	// Enqueue writes events for a document, replacing any events from a
	// previous scan of the same document.
	Enqueue(ctx context.Context, documentID uuid.UUID, events []Event) error

	// List returns a page of notifications with optional filters.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Event], error)

	// ListByDocument returns all notifications for a document in creation order.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Event, error)
}
