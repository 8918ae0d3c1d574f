package documents_test

import (
	"net/url"
	"testing"

	"github.com/praval-labs/praval/internal/documents"
)

func ptr[T any](v T) *T {
	return &v
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  documents.Filters
	}{
		{
			name:  "empty query",
			query: "",
			want:  documents.Filters{},
		},
		{
			name:  "stage filter",
			query: "stage=CHUNKED",
			want:  documents.Filters{Stage: ptr("CHUNKED")},
		},
		{
			name:  "combined filters",
			query: "category=pdf&doc_class=engineering&language=malayalam",
			want: documents.Filters{
				Category: ptr("pdf"),
				DocClass: ptr("engineering"),
				Language: ptr("malayalam"),
			},
		},
		{
			name:  "needs translation true",
			query: "needs_translation=true",
			want:  documents.Filters{NeedsTranslation: ptr(true)},
		},
		{
			name:  "needs translation invalid ignored",
			query: "needs_translation=maybe",
			want:  documents.Filters{},
		},
		{
			name:  "filename and decision",
			query: "filename=manual&quality_decision=enhance",
			want: documents.Filters{
				Filename:        ptr("manual"),
				QualityDecision: ptr("enhance"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parsing query: %v", err)
			}

			got := documents.FiltersFromQuery(values)

			if !equalPtr(got.Stage, tt.want.Stage) {
				t.Errorf("Stage = %v, want %v", deref(got.Stage), deref(tt.want.Stage))
			}
			if !equalPtr(got.Category, tt.want.Category) {
				t.Errorf("Category = %v, want %v", deref(got.Category), deref(tt.want.Category))
			}
			if !equalPtr(got.Language, tt.want.Language) {
				t.Errorf("Language = %v, want %v", deref(got.Language), deref(tt.want.Language))
			}
			if !equalPtr(got.DocClass, tt.want.DocClass) {
				t.Errorf("DocClass = %v, want %v", deref(got.DocClass), deref(tt.want.DocClass))
			}
			if !equalPtr(got.QualityDecision, tt.want.QualityDecision) {
				t.Errorf("QualityDecision = %v, want %v", deref(got.QualityDecision), deref(tt.want.QualityDecision))
			}
			if !equalPtr(got.Filename, tt.want.Filename) {
				t.Errorf("Filename = %v, want %v", deref(got.Filename), deref(tt.want.Filename))
			}
			if !equalPtr(got.NeedsTranslation, tt.want.NeedsTranslation) {
				t.Errorf("NeedsTranslation = %v, want %v", deref(got.NeedsTranslation), deref(tt.want.NeedsTranslation))
			}
		})
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
