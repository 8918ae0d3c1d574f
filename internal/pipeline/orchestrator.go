// Package pipeline drives documents through the processing stage
// machine: type detection, quality assessment, extraction,
// preprocessing, chunking, embedding, and trigger scanning. Every
// transition is persisted so processing resumes from the last
// completed stage after a restart.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/praval-labs/praval/internal/chunker"
	"github.com/praval-labs/praval/internal/chunks"
	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/embed"
	"github.com/praval-labs/praval/internal/extract"
	"github.com/praval-labs/praval/internal/notifications"
	"github.com/praval-labs/praval/internal/preprocess"
	"github.com/praval-labs/praval/internal/triage"
	"github.com/praval-labs/praval/internal/trigger"
	"github.com/praval-labs/praval/internal/vectorindex"
	"github.com/praval-labs/praval/pkg/storage"
)

// Config holds resolved pipeline settings.
type Config struct {
	Workers                 int
	QueueSize               int
	MaxFileSize             int64
	Weights                 triage.Weights
	Thresholds              triage.Thresholds
	ConfusionThreshold      float64
	MinExtractionConfidence float64
	Limits                  chunker.Limits
	Retry                   Policy
}

// Deps bundles the systems the orchestrator coordinates.
type Deps struct {
	Documents     documents.System
	Storage       storage.System
	Chunks        chunks.System
	Vectors       vectorindex.System
	Notifications notifications.System
	Extractor     *extract.Registry
	Preprocessor  *preprocess.Processor
	Chunker       *chunker.Engine
	Embedder      *embed.Generator
	Scanner       *trigger.Engine
	Cache         *trigger.Cache
}

// Orchestrator runs the stage machine over a bounded worker pool.
type Orchestrator struct {
	deps   Deps
	cfg    Config
	retry  Policy
	logger *slog.Logger

	queue chan uuid.UUID
	sem   *semaphore.Weighted
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates an Orchestrator. Start must be called before Submit.
func New(deps Deps, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 256
	}

	return &Orchestrator{
		deps:   deps,
		cfg:    cfg,
		retry:  cfg.Retry,
		logger: logger.With("system", "pipeline"),
		queue:  make(chan uuid.UUID, cfg.QueueSize),
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
	}
}

// Start launches the dispatcher. Documents are processed concurrently
// up to the configured worker count; the dispatcher drains the queue
// before Shutdown returns.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.wg.Add(1)
	go o.dispatch(ctx)

	o.logger.Info("pipeline started",
		"workers", o.cfg.Workers,
		"queue_size", o.cfg.QueueSize,
	)
	return nil
}

// Shutdown stops intake and waits for in-flight documents to reach
// their next persisted stage.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("pipeline drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues a document for processing. Documents already at READY
// are accepted and complete immediately without reprocessing.
func (o *Orchestrator) Submit(ctx context.Context, id uuid.UUID) error {
	doc, err := o.deps.Documents.Find(ctx, id)
	if err != nil {
		return err
	}

	if doc.Stage == documents.StageRejected || doc.Stage == documents.StageFailed {
		return fmt.Errorf("%w: document is %s", ErrValidation, doc.Stage)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return fmt.Errorf("%w: pipeline is shutting down", ErrTransient)
	}

	select {
	case o.queue <- id:
		return nil
	default:
		return fmt.Errorf("%w: pipeline queue is full", ErrTransient)
	}
}

func (o *Orchestrator) dispatch(ctx context.Context) {
	defer o.wg.Done()

	for id := range o.queue {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return
		}

		o.wg.Add(1)
		go func(id uuid.UUID) {
			defer o.wg.Done()
			defer o.sem.Release(1)
			o.process(ctx, id)
		}(id)
	}
}

// process advances one document through the stage machine until it
// reaches a terminal stage or the context is cancelled. Cancellation
// between stages leaves the document resumable at its last persisted
// stage.
func (o *Orchestrator) process(ctx context.Context, id uuid.UUID) {
	logger := o.logger.With("document_id", id)

	doc, err := o.deps.Documents.Find(ctx, id)
	if err != nil {
		logger.Error("load document", "error", err)
		return
	}

	for !doc.Stage.Terminal() {
		if ctx.Err() != nil {
			logger.Info("processing interrupted", "stage", doc.Stage)
			return
		}

		if err := o.step(ctx, doc); err != nil {
			o.fail(ctx, doc, err)
			return
		}

		doc, err = o.deps.Documents.Find(ctx, id)
		if err != nil {
			logger.Error("reload document", "error", err)
			return
		}
	}

	logger.Info("processing complete", "stage", doc.Stage)
}

// fail records the error and moves the document to the terminal stage
// its failure class dictates.
func (o *Orchestrator) fail(ctx context.Context, doc *documents.Document, err error) {
	terminal := classify(err)
	if !doc.Stage.CanTransition(terminal) {
		terminal = documents.StageFailed
	}

	o.logger.Error("stage failed",
		"document_id", doc.ID,
		"stage", doc.Stage,
		"terminal", terminal,
		"error", err,
	)

	if rerr := o.deps.Documents.RecordError(ctx, doc.ID, err.Error()); rerr != nil {
		o.logger.Error("record error", "document_id", doc.ID, "error", rerr)
	}
	if serr := o.deps.Documents.SetStage(ctx, doc.ID, terminal, documents.StageUpdate{}); serr != nil {
		o.logger.Error("set terminal stage", "document_id", doc.ID, "error", serr)
	}
}
