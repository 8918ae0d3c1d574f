package triage_test

import (
	"image/color"
	"testing"

	"github.com/praval-labs/praval/internal/triage"
)

func TestThresholdsDecide(t *testing.T) {
	thresholds := triage.DefaultThresholds()

	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"well above process", 0.95, triage.DecisionProcess},
		{"exactly process", 0.7, triage.DecisionProcess},
		{"between thresholds", 0.55, triage.DecisionEnhance},
		{"exactly enhance", 0.4, triage.DecisionEnhance},
		{"below enhance", 0.39, triage.DecisionReject},
		{"zero", 0, triage.DecisionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := thresholds.Decide(tt.score); got != tt.want {
				t.Errorf("Decide(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestAssessText(t *testing.T) {
	thresholds := triage.DefaultThresholds()

	tests := []struct {
		name         string
		data         []byte
		wantDecision string
	}{
		{
			name:         "clean prose",
			data:         []byte("The pump was inspected on schedule and no leaks were found."),
			wantDecision: triage.DecisionProcess,
		},
		{
			name:         "empty",
			data:         nil,
			wantDecision: triage.DecisionReject,
		},
		{
			name:         "invalid utf8",
			data:         []byte{0xff, 0xfe, 0x41, 0x42},
			wantDecision: triage.DecisionReject,
		},
		{
			name:         "control character soup",
			data:         []byte("\x01\x02\x03\x04\x05\x06\x07\x08"),
			wantDecision: triage.DecisionReject,
		},
		{
			name:         "malayalam prose",
			data:         []byte("പമ്പ് പരിശോധന പൂർത്തിയായി ചോർച്ച കണ്ടെത്തിയില്ല"),
			wantDecision: triage.DecisionProcess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triage.AssessText(tt.data, thresholds)
			if got.Decision != tt.wantDecision {
				t.Errorf("Decision = %q (score %v), want %q", got.Decision, got.Score, tt.wantDecision)
			}
		})
	}
}

func TestAssessImage(t *testing.T) {
	weights := triage.DefaultWeights()
	thresholds := triage.DefaultThresholds()

	// Uniform mid-gray: no sharpness, no contrast, tiny resolution.
	flat := pngBytes(t, 100, 100, func(x, y int) color.Color {
		return color.Gray{Y: 128}
	})
	// Per-pixel checkerboard: maximal sharpness and contrast but also
	// maximal pixel noise.
	checker := pngBytes(t, 100, 100, func(x, y int) color.Color {
		if (x+y)%2 == 0 {
			return color.Gray{Y: 0}
		}
		return color.Gray{Y: 255}
	})

	flatResult := triage.AssessImage(flat, weights, thresholds)
	checkerResult := triage.AssessImage(checker, weights, thresholds)

	if flatResult.Decision != triage.DecisionReject {
		t.Errorf("flat image Decision = %q (score %v), want %q", flatResult.Decision, flatResult.Score, triage.DecisionReject)
	}
	if checkerResult.Score <= flatResult.Score {
		t.Errorf("checkerboard score %v not above flat score %v", checkerResult.Score, flatResult.Score)
	}

	garbage := triage.AssessImage([]byte("not an image"), weights, thresholds)
	if garbage.Decision != triage.DecisionReject {
		t.Errorf("undecodable image Decision = %q, want %q", garbage.Decision, triage.DecisionReject)
	}
	if garbage.Score != 0 {
		t.Errorf("undecodable image Score = %v, want 0", garbage.Score)
	}
}
