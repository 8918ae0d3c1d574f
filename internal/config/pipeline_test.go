package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/praval-labs/praval/internal/config"
)

func pipelineFromTOML(t *testing.T, doc string) *config.PipelineConfig {
	t.Helper()

	var cfg config.PipelineConfig
	if err := toml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	return &cfg
}

func TestPipelineConfigDefaults(t *testing.T) {
	cfg := &config.PipelineConfig{}

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want 256", cfg.QueueSize)
	}
	if cfg.MaxFileSizeBytes() != 200*1024*1024 {
		t.Errorf("MaxFileSizeBytes() = %d", cfg.MaxFileSizeBytes())
	}
	if cfg.ConfusionThreshold != 0.85 {
		t.Errorf("ConfusionThreshold = %v", cfg.ConfusionThreshold)
	}
	if cfg.MinExtractionConfidence != 0.3 {
		t.Errorf("MinExtractionConfidence = %v", cfg.MinExtractionConfidence)
	}
	if cfg.QualityThresholds.Process != 0.7 || cfg.QualityThresholds.Enhance != 0.4 {
		t.Errorf("QualityThresholds = %+v", cfg.QualityThresholds)
	}
	if cfg.Chunking.Min != 40 || cfg.Chunking.Max != 400 {
		t.Errorf("Chunking = %+v", cfg.Chunking)
	}
	if cfg.RetryAttempts != 3 || cfg.RetryBackoffDuration() != time.Second {
		t.Errorf("retry = %d/%v", cfg.RetryAttempts, cfg.RetryBackoffDuration())
	}
	if cfg.CacheTTLDuration() != time.Hour {
		t.Errorf("CacheTTLDuration() = %v", cfg.CacheTTLDuration())
	}
	if cfg.OCR.Languages != "eng+mal" {
		t.Errorf("OCR.Languages = %q", cfg.OCR.Languages)
	}
}

func TestPipelineConfigFromTOML(t *testing.T) {
	cfg := pipelineFromTOML(t, `
workers = 8
max_file_size = "50MB"
confusion_threshold = 0.9

[quality_thresholds]
process = 0.8
enhance = 0.5

[ocr]
endpoint = "http://ocr.internal:9090/recognize"

[embedding]
base_url = "http://embed.internal:8000/v1"
model = "nomic-embed-text"
dimensions = 768

[[triggers.categories]]
name = "safety_incident"
phrases = ["serious injury", "fatality reported"]
threshold = 0.82
priority = "critical"
recipients = ["safety@plant.example"]
`)

	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.MaxFileSizeBytes() != 50*1024*1024 {
		t.Errorf("MaxFileSizeBytes() = %d", cfg.MaxFileSizeBytes())
	}

	runtime := cfg.Runtime()
	if runtime.Thresholds.Process != 0.8 || runtime.Thresholds.Enhance != 0.5 {
		t.Errorf("runtime thresholds = %+v", runtime.Thresholds)
	}
	if runtime.ConfusionThreshold != 0.9 {
		t.Errorf("runtime ConfusionThreshold = %v", runtime.ConfusionThreshold)
	}
	if runtime.Retry.Attempts != 3 || runtime.Retry.Backoff != time.Second {
		t.Errorf("runtime retry = %+v", runtime.Retry)
	}

	categories := cfg.Categories()
	if len(categories) != 1 {
		t.Fatalf("Categories() len = %d, want 1", len(categories))
	}
	cat := categories[0]
	if cat.Name != "safety_incident" || cat.Threshold != 0.82 || len(cat.Phrases) != 2 {
		t.Errorf("category = %+v", cat)
	}
	if len(cat.Recipients) != 1 || cat.Recipients[0] != "safety@plant.example" {
		t.Errorf("recipients = %v", cat.Recipients)
	}
}

func TestPipelineConfigEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvPipelineWorkers, "12")
	t.Setenv(config.EnvOCREndpoint, "http://ocr.override:9090")
	t.Setenv(config.EnvEmbeddingModel, "mxbai-embed-large")
	t.Setenv(config.EnvTriggerCacheTTL, "15m")

	cfg := &config.PipelineConfig{Workers: 2}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Workers != 12 {
		t.Errorf("Workers = %d, want 12 from environment", cfg.Workers)
	}
	if cfg.OCR.Endpoint != "http://ocr.override:9090" {
		t.Errorf("OCR.Endpoint = %q", cfg.OCR.Endpoint)
	}
	if cfg.Embedding.Model != "mxbai-embed-large" {
		t.Errorf("Embedding.Model = %q", cfg.Embedding.Model)
	}
	if cfg.CacheTTLDuration() != 15*time.Minute {
		t.Errorf("CacheTTLDuration() = %v", cfg.CacheTTLDuration())
	}
}

func TestPipelineConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "bad max file size",
			doc:  `max_file_size = "huge"`,
			want: "max_file_size",
		},
		{
			name: "bad retry backoff",
			doc:  `retry_backoff = "soon"`,
			want: "retry_backoff",
		},
		{
			name: "inverted thresholds",
			doc: `[quality_thresholds]
process = 0.4
enhance = 0.7`,
			want: "threshold",
		},
		{
			name: "category missing name",
			doc: `[[triggers.categories]]
phrases = ["x"]
threshold = 0.5`,
			want: "missing name",
		},
		{
			name: "category threshold out of range",
			doc: `[[triggers.categories]]
name = "bad"
phrases = ["x"]
threshold = 1.5`,
			want: "threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := pipelineFromTOML(t, tt.doc)

			err := cfg.Finalize()
			if err == nil {
				t.Fatal("Finalize() error = nil, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestPipelineConfigMerge(t *testing.T) {
	base := pipelineFromTOML(t, `
workers = 4
max_file_size = "100MB"

[ocr]
endpoint = "http://ocr.base:9090"
`)
	overlay := pipelineFromTOML(t, `
workers = 16

[embedding]
base_url = "http://embed.overlay:8000/v1"
`)

	base.Merge(overlay)

	if base.Workers != 16 {
		t.Errorf("Workers = %d, want overlay value 16", base.Workers)
	}
	if base.MaxFileSize != "100MB" {
		t.Errorf("MaxFileSize = %q, want base value retained", base.MaxFileSize)
	}
	if base.OCR.Endpoint != "http://ocr.base:9090" {
		t.Errorf("OCR.Endpoint = %q, want base value retained", base.OCR.Endpoint)
	}
	if base.Embedding.BaseURL != "http://embed.overlay:8000/v1" {
		t.Errorf("Embedding.BaseURL = %q, want overlay value", base.Embedding.BaseURL)
	}
}
