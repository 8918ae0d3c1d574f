package api

import (
	"fmt"
	"time"

	"github.com/praval-labs/praval/internal/chunker"
	"github.com/praval-labs/praval/internal/chunks"
	"github.com/praval-labs/praval/internal/config"
	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/embed"
	"github.com/praval-labs/praval/internal/extract"
	"github.com/praval-labs/praval/internal/notifications"
	"github.com/praval-labs/praval/internal/ocr"
	"github.com/praval-labs/praval/internal/pipeline"
	"github.com/praval-labs/praval/internal/preprocess"
	"github.com/praval-labs/praval/internal/trigger"
	"github.com/praval-labs/praval/internal/vectorindex"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents     documents.System
	Chunks        chunks.System
	Vectors       vectorindex.System
	Notifications notifications.System
	Pipeline      *pipeline.Orchestrator
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	docsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	chunksSystem := chunks.New(db, runtime.Logger)
	vectorSystem := vectorindex.New(db, runtime.Logger)
	notifySystem := notifications.New(db, runtime.Logger, runtime.Pagination)

	ocrClient, err := ocr.NewClient(cfg.Pipeline.OCR)
	if err != nil {
		return nil, fmt.Errorf("ocr client: %w", err)
	}

	embedService, err := embed.NewService(cfg.Pipeline.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}

	cache := trigger.NewCache(
		embedService,
		cfg.Pipeline.Categories(),
		cfg.Pipeline.CacheTTLDuration(),
		runtime.Logger,
	)

	var embedBackoff time.Duration
	if d, err := time.ParseDuration(cfg.Pipeline.Embedding.Timeout); err == nil {
		embedBackoff = d / 10
	}
	if embedBackoff <= 0 {
		embedBackoff = time.Second
	}

	orchestrator := pipeline.New(
		pipeline.Deps{
			Documents:     docsSystem,
			Storage:       runtime.Storage,
			Chunks:        chunksSystem,
			Vectors:       vectorSystem,
			Notifications: notifySystem,
			Extractor:     extract.NewRegistry(ocrClient, runtime.Logger),
			Preprocessor:  preprocess.New(cfg.Pipeline.ConfusionThreshold),
			Chunker:       chunker.New(cfg.Pipeline.Chunking),
			Embedder: embed.NewGenerator(
				embedService,
				cfg.Pipeline.Embedding.BatchSize,
				cfg.Pipeline.Embedding.Retries,
				embedBackoff,
				runtime.Logger,
			),
			Scanner: trigger.NewEngine(cache, runtime.Logger),
			Cache:   cache,
		},
		cfg.Pipeline.Runtime(),
		runtime.Logger,
	)

	return &Domain{
		Documents:     docsSystem,
		Chunks:        chunksSystem,
		Vectors:       vectorSystem,
		Notifications: notifySystem,
		Pipeline:      orchestrator,
	}, nil
}
