package notifications

import (
	"encoding/json"
	"net/url"

	"github.com/praval-labs/praval/pkg/query"
	"github.com/praval-labs/praval/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "notifications", "n").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("chunk_id", "ChunkID").
	Project("category", "Category").
	Project("similarity", "Similarity").
	Project("priority", "Priority").
	Project("recipients", "Recipients").
	Project("created_at", "CreatedAt").
	Join("public", "documents", "d", "INNER JOIN", "d.id = n.document_id").
	Project("filename", "Filename")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for notification queries.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Filename *string `json:"filename,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("Priority", f.Priority).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}
	if p := values.Get("priority"); p != "" {
		f.Priority = &p
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	return f
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	var recipientsRaw []byte

	err := s.Scan(
		&e.ID,
		&e.DocumentID,
		&e.ChunkID,
		&e.Category,
		&e.Similarity,
		&e.Priority,
		&recipientsRaw,
		&e.CreatedAt,
		&e.Filename,
	)
	if err != nil {
		return e, err
	}

	if len(recipientsRaw) > 0 {
		if err := json.Unmarshal(recipientsRaw, &e.Recipients); err != nil {
			return e, err
		}
	}
	return e, nil
}
