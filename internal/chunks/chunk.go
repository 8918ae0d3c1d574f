// Package chunks stores the segmented text units produced by the chunking
// stage, keyed by document and ordinal position.
package chunks

import (
	"fmt"

	"github.com/google/uuid"
)

// Type identifies the chunking strategy that produced a chunk.
type Type string

const (
	TypeSection   Type = "section"
	TypeStep      Type = "step"
	TypeEvent     Type = "event"
	TypeTable     Type = "table"
	TypeClause    Type = "clause"
	TypeParagraph Type = "paragraph"
	TypeMetadata  Type = "metadata"
)

// Chunk is one unit of text produced by segmenting an extracted document.
// Its identifier is deterministic: the parent document ID joined with the
// zero-based ordinal position.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Text       string    `json:"text"`
	Type       Type      `json:"type"`
	Language   string    `json:"language"`
	WordCount  int       `json:"word_count"`
	Confidence float64   `json:"confidence"`
}

// ChunkID builds the deterministic identifier for a chunk of a document.
func ChunkID(documentID uuid.UUID, index int) string {
	return fmt.Sprintf("%s:%d", documentID, index)
}
