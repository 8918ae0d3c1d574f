// Package documents implements the document domain for Praval.
// It provides types, data access, and business logic for document upload,
// registration, pipeline stage tracking, and blob storage integration.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// File-type categories assigned by type detection.
const (
	CategoryText    = "text"
	CategoryImage   = "image"
	CategoryPDF     = "pdf"
	CategoryOffice  = "office"
	CategoryCAD     = "cad"
	CategoryUnknown = "unknown"
)

// Languages assigned by preprocessing.
const (
	LanguageEnglish   = "english"
	LanguageMalayalam = "malayalam"
	LanguageMixed     = "mixed"
	LanguageUnknown   = "unknown"
)

// Document classes used for chunking strategy dispatch. Declared by the
// uploader; DocClassUnclassified is the universal fallback.
const (
	DocClassEngineering  = "engineering"
	DocClassMaintenance  = "maintenance"
	DocClassIncident     = "incident"
	DocClassFinancial    = "financial"
	DocClassRegulatory   = "regulatory"
	DocClassUnclassified = "unclassified"
)

// Document represents a registered document with its metadata, pipeline
// progress, and blob storage reference.
type Document struct {
	ID                  uuid.UUID `json:"id"`
	Filename            string    `json:"filename"`
	ContentType         string    `json:"content_type"`
	SizeBytes           int64     `json:"size_bytes"`
	Category            string    `json:"category"`
	DetectionConfidence float64   `json:"detection_confidence"`
	QualityScore        float64   `json:"quality_score"`
	QualityDecision     string    `json:"quality_decision"`
	Language            string    `json:"language"`
	NeedsTranslation    bool      `json:"needs_translation"`
	DocClass            string    `json:"doc_class"`
	Stage               Stage     `json:"stage"`
	Errors              []string  `json:"errors"`
	StorageKey          string    `json:"storage_key"`
	UploadedAt          time.Time `json:"uploaded_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new document.
// Data holds the raw file bytes. DocClass is optional and defaults to
// unclassified when empty.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	DocClass    string
}

// StageUpdate carries the optional per-stage fields persisted alongside a
// stage transition. Nil fields are left unchanged.
type StageUpdate struct {
	Category            *string
	DetectionConfidence *float64
	QualityScore        *float64
	QualityDecision     *string
	Language            *string
	NeedsTranslation    *bool
}

// Status is the externally visible processing state of a document.
type Status struct {
	ID           uuid.UUID `json:"id"`
	Stage        Stage     `json:"stage"`
	QualityScore float64   `json:"quality_score"`
	Language     string    `json:"language"`
	Error        string    `json:"error,omitempty"`
}

// StatusView derives the external status from a document. On failure the
// most recent recorded error is surfaced as a human-readable summary.
func (d *Document) StatusView() Status {
	s := Status{
		ID:           d.ID,
		Stage:        d.Stage,
		QualityScore: d.QualityScore,
		Language:     d.Language,
	}
	if d.Stage.Terminal() && len(d.Errors) > 0 {
		s.Error = d.Errors[len(d.Errors)-1]
	}
	return s
}
