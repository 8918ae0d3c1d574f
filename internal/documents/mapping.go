package documents

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/praval-labs/praval/pkg/query"
	"github.com/praval-labs/praval/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("category", "Category").
	Project("detection_confidence", "DetectionConfidence").
	Project("quality_score", "QualityScore").
	Project("quality_decision", "QualityDecision").
	Project("language", "Language").
	Project("needs_translation", "NeedsTranslation").
	Project("doc_class", "DocClass").
	Project("stage", "Stage").
	Project("errors", "Errors").
	Project("storage_key", "StorageKey").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Stage, Category, Language, DocClass, and
// QualityDecision use exact matching; Filename uses case-insensitive
// contains matching.
type Filters struct {
	Stage            *string `json:"stage,omitempty"`
	Category         *string `json:"category,omitempty"`
	Language         *string `json:"language,omitempty"`
	DocClass         *string `json:"doc_class,omitempty"`
	QualityDecision  *string `json:"quality_decision,omitempty"`
	Filename         *string `json:"filename,omitempty"`
	NeedsTranslation *bool   `json:"needs_translation,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereEquals("Category", f.Category).
		WhereEquals("Language", f.Language).
		WhereEquals("DocClass", f.DocClass).
		WhereEquals("QualityDecision", f.QualityDecision).
		WhereEquals("NeedsTranslation", f.NeedsTranslation).
		WhereContains("Filename", f.Filename)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("stage"); s != "" {
		f.Stage = &s
	}
	if c := values.Get("category"); c != "" {
		f.Category = &c
	}
	if l := values.Get("language"); l != "" {
		f.Language = &l
	}
	if dc := values.Get("doc_class"); dc != "" {
		f.DocClass = &dc
	}
	if qd := values.Get("quality_decision"); qd != "" {
		f.QualityDecision = &qd
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if nt := values.Get("needs_translation"); nt != "" {
		if v, err := strconv.ParseBool(nt); err == nil {
			f.NeedsTranslation = &v
		}
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d         Document
		stage     string
		errorsRaw []byte
	)
	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.Category,
		&d.DetectionConfidence,
		&d.QualityScore,
		&d.QualityDecision,
		&d.Language,
		&d.NeedsTranslation,
		&d.DocClass,
		&stage,
		&errorsRaw,
		&d.StorageKey,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	d.Stage = Stage(stage)
	if len(errorsRaw) > 0 {
		if err := json.Unmarshal(errorsRaw, &d.Errors); err != nil {
			return d, err
		}
	}
	return d, nil
}
