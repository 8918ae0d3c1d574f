package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/praval-labs/praval/internal/chunker"
	"github.com/praval-labs/praval/internal/embed"
	"github.com/praval-labs/praval/internal/ocr"
	"github.com/praval-labs/praval/internal/pipeline"
	"github.com/praval-labs/praval/internal/triage"
	"github.com/praval-labs/praval/internal/trigger"
	"github.com/praval-labs/praval/pkg/formatting"
)

const (
	EnvPipelineWorkers       = "PRAVAL_PIPELINE_WORKERS"
	EnvPipelineMaxFileSize   = "PRAVAL_PIPELINE_MAX_FILE_SIZE"
	EnvOCREndpoint           = "PRAVAL_OCR_ENDPOINT"
	EnvEmbeddingBaseURL      = "PRAVAL_EMBEDDING_BASE_URL"
	EnvEmbeddingAPIKey       = "PRAVAL_EMBEDDING_API_KEY"
	EnvEmbeddingModel        = "PRAVAL_EMBEDDING_MODEL"
	EnvTriggerCacheTTL       = "PRAVAL_TRIGGER_CACHE_TTL"
	EnvPipelineRetryAttempts = "PRAVAL_PIPELINE_RETRY_ATTEMPTS"
)

// PipelineConfig holds processing settings: worker pool sizing, the
// file size cap, quality thresholds and metric weights, chunk size
// bounds, retry policy, and the OCR, embedding, and trigger service
// configurations.
type PipelineConfig struct {
	Workers                 int               `toml:"workers"`
	QueueSize               int               `toml:"queue_size"`
	MaxFileSize             string            `toml:"max_file_size"`
	QualityWeights          triage.Weights    `toml:"quality_weights"`
	QualityThresholds       triage.Thresholds `toml:"quality_thresholds"`
	ConfusionThreshold      float64           `toml:"confusion_threshold"`
	MinExtractionConfidence float64           `toml:"min_extraction_confidence"`
	Chunking                chunker.Limits    `toml:"chunking"`
	RetryAttempts           int               `toml:"retry_attempts"`
	RetryBackoff            string            `toml:"retry_backoff"`
	OCR                     ocr.Config        `toml:"ocr"`
	Embedding               embed.Config      `toml:"embedding"`
	Triggers                triggerConfig     `toml:"triggers"`
}

type triggerConfig struct {
	Categories []triggerCategory `toml:"categories"`
	CacheTTL   string            `toml:"cache_ttl"`
}

type triggerCategory struct {
	Name       string   `toml:"name"`
	Phrases    []string `toml:"phrases"`
	Threshold  float64  `toml:"threshold"`
	Priority   string   `toml:"priority"`
	Recipients []string `toml:"recipients"`
}

// MaxFileSizeBytes parses MaxFileSize into bytes.
func (c *PipelineConfig) MaxFileSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 200 * 1024 * 1024
	}
	return size
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *PipelineConfig) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	return d
}

// CacheTTLDuration returns the trigger cache TTL as a time.Duration.
func (c *PipelineConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.Triggers.CacheTTL)
	return d
}

// Runtime converts the config to the resolved pipeline settings.
func (c *PipelineConfig) Runtime() pipeline.Config {
	return pipeline.Config{
		Workers:                 c.Workers,
		QueueSize:               c.QueueSize,
		MaxFileSize:             c.MaxFileSizeBytes(),
		Weights:                 c.QualityWeights,
		Thresholds:              c.QualityThresholds,
		ConfusionThreshold:      c.ConfusionThreshold,
		MinExtractionConfidence: c.MinExtractionConfidence,
		Limits:                  c.Chunking,
		Retry: pipeline.Policy{
			Attempts: c.RetryAttempts,
			Backoff:  c.RetryBackoffDuration(),
		},
	}
}

// Categories converts the configured trigger categories.
func (c *PipelineConfig) Categories() []trigger.Category {
	out := make([]trigger.Category, len(c.Triggers.Categories))
	for i, tc := range c.Triggers.Categories {
		out[i] = trigger.Category{
			Name:       tc.Name,
			Phrases:    tc.Phrases,
			Threshold:  tc.Threshold,
			Priority:   tc.Priority,
			Recipients: tc.Recipients,
		}
	}
	return out
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.QualityWeights != (triage.Weights{}) {
		c.QualityWeights = overlay.QualityWeights
	}
	if overlay.QualityThresholds != (triage.Thresholds{}) {
		c.QualityThresholds = overlay.QualityThresholds
	}
	if overlay.ConfusionThreshold != 0 {
		c.ConfusionThreshold = overlay.ConfusionThreshold
	}
	if overlay.MinExtractionConfidence != 0 {
		c.MinExtractionConfidence = overlay.MinExtractionConfidence
	}
	if overlay.Chunking != (chunker.Limits{}) {
		c.Chunking = overlay.Chunking
	}
	if overlay.RetryAttempts != 0 {
		c.RetryAttempts = overlay.RetryAttempts
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
	if overlay.OCR.Endpoint != "" {
		c.OCR.Endpoint = overlay.OCR.Endpoint
	}
	if overlay.OCR.Languages != "" {
		c.OCR.Languages = overlay.OCR.Languages
	}
	if overlay.OCR.Timeout != "" {
		c.OCR.Timeout = overlay.OCR.Timeout
	}
	if overlay.Embedding.BaseURL != "" {
		c.Embedding.BaseURL = overlay.Embedding.BaseURL
	}
	if overlay.Embedding.APIKey != "" {
		c.Embedding.APIKey = overlay.Embedding.APIKey
	}
	if overlay.Embedding.Model != "" {
		c.Embedding.Model = overlay.Embedding.Model
	}
	if overlay.Embedding.Dimensions != 0 {
		c.Embedding.Dimensions = overlay.Embedding.Dimensions
	}
	if overlay.Embedding.Timeout != "" {
		c.Embedding.Timeout = overlay.Embedding.Timeout
	}
	if overlay.Embedding.BatchSize != 0 {
		c.Embedding.BatchSize = overlay.Embedding.BatchSize
	}
	if overlay.Embedding.Retries != 0 {
		c.Embedding.Retries = overlay.Embedding.Retries
	}
	if len(overlay.Triggers.Categories) > 0 {
		c.Triggers.Categories = overlay.Triggers.Categories
	}
	if overlay.Triggers.CacheTTL != "" {
		c.Triggers.CacheTTL = overlay.Triggers.CacheTTL
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = "200MB"
	}
	if c.QualityWeights == (triage.Weights{}) {
		c.QualityWeights = triage.DefaultWeights()
	}
	if c.QualityThresholds == (triage.Thresholds{}) {
		c.QualityThresholds = triage.DefaultThresholds()
	}
	if c.ConfusionThreshold == 0 {
		c.ConfusionThreshold = 0.85
	}
	if c.MinExtractionConfidence == 0 {
		c.MinExtractionConfidence = 0.3
	}
	if c.Chunking == (chunker.Limits{}) {
		c.Chunking = chunker.DefaultLimits()
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "1s"
	}
	if c.OCR.Languages == "" {
		c.OCR.Languages = ocr.DefaultLanguages
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 16
	}
	if c.Embedding.Retries == 0 {
		c.Embedding.Retries = 2
	}
	if c.Triggers.CacheTTL == "" {
		c.Triggers.CacheTTL = "1h"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvPipelineMaxFileSize); v != "" {
		c.MaxFileSize = v
	}
	if v := os.Getenv(EnvPipelineRetryAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RetryAttempts = n
		}
	}
	if v := os.Getenv(EnvOCREndpoint); v != "" {
		c.OCR.Endpoint = v
	}
	if v := os.Getenv(EnvEmbeddingBaseURL); v != "" {
		c.Embedding.BaseURL = v
	}
	if v := os.Getenv(EnvEmbeddingAPIKey); v != "" {
		c.Embedding.APIKey = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		c.Embedding.Model = v
	}
	if v := os.Getenv(EnvTriggerCacheTTL); v != "" {
		c.Triggers.CacheTTL = v
	}
}

func (c *PipelineConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxFileSize); err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.Triggers.CacheTTL); err != nil {
		return fmt.Errorf("invalid triggers.cache_ttl: %w", err)
	}
	if c.QualityThresholds.Enhance > c.QualityThresholds.Process {
		return fmt.Errorf("quality enhance threshold %.2f exceeds process threshold %.2f",
			c.QualityThresholds.Enhance, c.QualityThresholds.Process)
	}
	for _, cat := range c.Triggers.Categories {
		if cat.Name == "" {
			return fmt.Errorf("trigger category missing name")
		}
		if cat.Threshold <= 0 || cat.Threshold > 1 {
			return fmt.Errorf("trigger category %s: threshold must be in (0, 1]", cat.Name)
		}
	}
	return nil
}
