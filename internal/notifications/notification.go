// Package notifications records trigger events produced by the scan stage
// as a write-once outbox and exposes them for delivery and review.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels for trigger notifications, configured per trigger category.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Event is a single trigger notification. Events are append-only: once
// written they are never updated, and re-scans of a document replace the
// document's event set wholesale.
type Event struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkID    string    `json:"chunk_id"`
	Category   string    `json:"category"`
	Similarity float64   `json:"similarity"`
	Priority   string    `json:"priority"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}
