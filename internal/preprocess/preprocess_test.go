package preprocess_test

import (
	"strings"
	"testing"

	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/preprocess"
)

func TestRunNormalizesWhitespace(t *testing.T) {
	p := preprocess.New(0.85)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "collapses runs of spaces and tabs",
			text: "valve   seat\tinspection",
			want: "valve seat inspection",
		},
		{
			name: "trims trailing whitespace per line",
			text: "first line   \nsecond line\t",
			want: "first line\nsecond line",
		},
		{
			name: "limits blank lines to one",
			text: "heading\n\n\n\nbody",
			want: "heading\n\nbody",
		},
		{
			name: "drops leading and trailing blank lines",
			text: "\n\nonly content\n\n",
			want: "only content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Run(preprocess.Input{Text: tt.text, Confidence: 1.0})
			if out.Text != tt.want {
				t.Errorf("Text = %q, want %q", out.Text, tt.want)
			}
		})
	}
}

func TestRunConfusionRepairGatedByConfidence(t *testing.T) {
	p := preprocess.New(0.85)
	text := "c0ntr0l va1ve seria1 number 80551 reads 150 psi"

	tests := []struct {
		name       string
		confidence float64
		want       string
	}{
		{
			name:       "low confidence repairs letter tokens only",
			confidence: 0.5,
			want:       "cOntrOl valve serial number 80551 reads 150 psi",
		},
		{
			name:       "high confidence leaves text untouched",
			confidence: 0.95,
			want:       text,
		},
		{
			name:       "at threshold leaves text untouched",
			confidence: 0.85,
			want:       text,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Run(preprocess.Input{Text: text, Confidence: tt.confidence})
			if out.Text != tt.want {
				t.Errorf("Text = %q, want %q", out.Text, tt.want)
			}
		})
	}
}

func TestRunDeduplicatesFragments(t *testing.T) {
	p := preprocess.New(0.85)

	lines := []string{
		"Monthly inspection of hydraulic system completed",
		"Pressure readings within tolerance",
		"monthly   inspection of hydraulic system completed",
		"Step 1",
		"Step 1",
	}
	out := p.Run(preprocess.Input{Text: strings.Join(lines, "\n"), Confidence: 1.0})

	if out.RemovedFragments != 1 {
		t.Errorf("RemovedFragments = %d, want 1", out.RemovedFragments)
	}
	if strings.Count(out.Text, "Step 1") != 2 {
		t.Errorf("short repeated lines must survive, got %q", out.Text)
	}
	if strings.Contains(strings.ToLower(out.Text), "monthly inspection of hydraulic system completed\npressure") == false {
		t.Errorf("first occurrence must survive, got %q", out.Text)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name            string
		text            string
		wantLang        string
		wantTranslation bool
	}{
		{
			name:            "english",
			text:            "Replace the filter cartridge every six months.",
			wantLang:        documents.LanguageEnglish,
			wantTranslation: false,
		},
		{
			name:            "malayalam",
			text:            "എല്ലാ ആറുമാസത്തിലും ഫിൽട്ടർ മാറ്റുക",
			wantLang:        documents.LanguageMalayalam,
			wantTranslation: true,
		},
		{
			name:            "mixed",
			text:            "Replace the filter cartridge ഫിൽട്ടർ മാറ്റുക every six months as described in the maintenance schedule.",
			wantLang:        documents.LanguageMixed,
			wantTranslation: true,
		},
		{
			name:            "no letters",
			text:            "1234 5678 --- 9.81",
			wantLang:        documents.LanguageUnknown,
			wantTranslation: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, needsTranslation := preprocess.DetectLanguage(tt.text)
			if lang != tt.wantLang {
				t.Errorf("lang = %q, want %q", lang, tt.wantLang)
			}
			if needsTranslation != tt.wantTranslation {
				t.Errorf("needsTranslation = %v, want %v", needsTranslation, tt.wantTranslation)
			}
		})
	}
}
