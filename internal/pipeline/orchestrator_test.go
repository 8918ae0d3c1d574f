package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/chunker"
	"github.com/praval-labs/praval/internal/chunks"
	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/embed"
	"github.com/praval-labs/praval/internal/extract"
	"github.com/praval-labs/praval/internal/notifications"
	"github.com/praval-labs/praval/internal/pipeline"
	"github.com/praval-labs/praval/internal/preprocess"
	"github.com/praval-labs/praval/internal/triage"
	"github.com/praval-labs/praval/internal/trigger"
	"github.com/praval-labs/praval/internal/vectorindex"
	"github.com/praval-labs/praval/pkg/lifecycle"
	"github.com/praval-labs/praval/pkg/pagination"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDocuments keeps documents in memory and enforces the stage
// machine the way the persistent system does.
type fakeDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*documents.Document
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: map[uuid.UUID]*documents.Document{}}
}

func (f *fakeDocuments) add(doc documents.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = &doc
}

func (f *fakeDocuments) get(id uuid.UUID) documents.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.docs[id]
}

func (f *fakeDocuments) Handler(maxUploadSize int64) *documents.Handler { return nil }

func (f *fakeDocuments) List(ctx context.Context, page pagination.PageRequest, filters documents.Filters) (*pagination.PageResult[documents.Document], error) {
	return nil, nil
}

func (f *fakeDocuments) Find(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocuments) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) SetStage(ctx context.Context, id uuid.UUID, stage documents.Stage, update documents.StageUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[id]
	if !ok {
		return documents.ErrNotFound
	}
	if !doc.Stage.CanTransition(stage) {
		return fmt.Errorf("%w: %s -> %s", documents.ErrInvalidTransition, doc.Stage, stage)
	}

	doc.Stage = stage
	if update.Category != nil {
		doc.Category = *update.Category
	}
	if update.DetectionConfidence != nil {
		doc.DetectionConfidence = *update.DetectionConfidence
	}
	if update.QualityScore != nil {
		doc.QualityScore = *update.QualityScore
	}
	if update.QualityDecision != nil {
		doc.QualityDecision = *update.QualityDecision
	}
	if update.Language != nil {
		doc.Language = *update.Language
	}
	if update.NeedsTranslation != nil {
		doc.NeedsTranslation = *update.NeedsTranslation
	}
	return nil
}

func (f *fakeDocuments) RecordError(ctx context.Context, id uuid.UUID, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return documents.ErrNotFound
	}
	doc.Errors = append(doc.Errors, msg)
	return nil
}

func (f *fakeDocuments) GetStatus(ctx context.Context, id uuid.UUID) (*documents.Status, error) {
	doc, err := f.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	status := doc.StatusView()
	return &status, nil
}

// memStorage is an in-memory blob store. failGets forces GetBytes to
// fail that many times before succeeding; uploads counts Upload calls
// per key.
type memStorage struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	uploads  map[string]int
	failGets int
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}, uploads: map[string]int{}}
}

func (s *memStorage) put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
}

func (s *memStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

func (s *memStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (s *memStorage) uploadCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[key]
}

func (s *memStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.uploads[key]++
	s.mu.Unlock()
	s.put(key, data)
	return nil
}

func (s *memStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) GetBytes(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGets > 0 {
		s.failGets--
		return nil, errors.New("storage unavailable")
	}
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", key)
	}
	return data, nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.has(key), nil
}

type fakeChunks struct {
	mu   sync.Mutex
	sets map[uuid.UUID][]chunks.Chunk
}

func newFakeChunks() *fakeChunks {
	return &fakeChunks{sets: map[uuid.UUID][]chunks.Chunk{}}
}

func (f *fakeChunks) ReplaceAll(ctx context.Context, documentID uuid.UUID, set []chunks.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[documentID] = set
	return nil
}

func (f *fakeChunks) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]chunks.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets[documentID], nil
}

func (f *fakeChunks) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets, documentID)
	return nil
}

type fakeVectors struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]vectorindex.Entry
}

func newFakeVectors() *fakeVectors {
	return &fakeVectors{entries: map[uuid.UUID][]vectorindex.Entry{}}
}

// Upsert mirrors the persistent index: one entry per chunk per model
// version, replaced in place on conflict.
func (f *fakeVectors) Upsert(ctx context.Context, entries []vectorindex.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range entries {
		stored := f.entries[e.DocumentID]
		replaced := false
		for i, existing := range stored {
			if existing.ChunkID == e.ChunkID && existing.ModelVersion == e.ModelVersion {
				stored[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, e)
		}
		f.entries[e.DocumentID] = stored
	}
	return nil
}

func (f *fakeVectors) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]vectorindex.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[documentID], nil
}

func (f *fakeVectors) QueryByVector(ctx context.Context, documentID uuid.UUID, vector []float32) ([]vectorindex.Match, error) {
	return nil, nil
}

func (f *fakeVectors) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, documentID)
	return nil
}

type fakeNotifications struct {
	mu     sync.Mutex
	events map[uuid.UUID][]notifications.Event
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{events: map[uuid.UUID][]notifications.Event{}}
}

func (f *fakeNotifications) Handler() *notifications.Handler { return nil }

func (f *fakeNotifications) Enqueue(ctx context.Context, documentID uuid.UUID, events []notifications.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events[documentID] = events
	return nil
}

func (f *fakeNotifications) List(ctx context.Context, page pagination.PageRequest, filters notifications.Filters) (*pagination.PageResult[notifications.Event], error) {
	return nil, nil
}

func (f *fakeNotifications) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]notifications.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[documentID], nil
}

// constantEmbed embeds everything to the same unit vector so every
// chunk matches every trigger centroid exactly.
type constantEmbed struct{}

func (constantEmbed) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (constantEmbed) ModelName() string { return "test-embed" }
func (constantEmbed) Dimensions() int   { return 3 }

type harness struct {
	orch          *pipeline.Orchestrator
	docs          *fakeDocuments
	storage       *memStorage
	chunks        *fakeChunks
	vectors       *fakeVectors
	notifications *fakeNotifications
}

func newHarness(t *testing.T, cfg pipeline.Config) *harness {
	t.Helper()

	logger := discard()
	docs := newFakeDocuments()
	store := newMemStorage()
	chunkStore := newFakeChunks()
	vectorStore := newFakeVectors()
	noteStore := newFakeNotifications()

	service := constantEmbed{}
	cache := trigger.NewCache(service, []trigger.Category{{
		Name:       "safety_incident",
		Phrases:    []string{"serious injury reported"},
		Threshold:  0.9,
		Priority:   "critical",
		Recipients: []string{"safety@plant.example"},
	}}, time.Hour, logger)

	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 16
	}
	if cfg.Thresholds == (triage.Thresholds{}) {
		cfg.Thresholds = triage.DefaultThresholds()
	}
	if cfg.Weights == (triage.Weights{}) {
		cfg.Weights = triage.DefaultWeights()
	}
	if cfg.Limits == (chunker.Limits{}) {
		cfg.Limits = chunker.DefaultLimits()
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = pipeline.Policy{Attempts: 2, Backoff: time.Millisecond}
	}

	orch := pipeline.New(pipeline.Deps{
		Documents:     docs,
		Storage:       store,
		Chunks:        chunkStore,
		Vectors:       vectorStore,
		Notifications: noteStore,
		Extractor:     extract.NewRegistry(nil, logger),
		Preprocessor:  preprocess.New(cfg.ConfusionThreshold),
		Chunker:       chunker.New(cfg.Limits),
		Embedder:      embed.NewGenerator(service, 16, 0, 0, logger),
		Scanner:       trigger.NewEngine(cache, logger),
		Cache:         cache,
	}, cfg, logger)

	return &harness{
		orch:          orch,
		docs:          docs,
		storage:       store,
		chunks:        chunkStore,
		vectors:       vectorStore,
		notifications: noteStore,
	}
}

// run submits the document and drains the pipeline.
func (h *harness) run(t *testing.T, id uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := h.orch.Submit(ctx, id); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := h.orch.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func textDocument(content string) (documents.Document, []byte) {
	id := uuid.New()
	return documents.Document{
		ID:          id,
		Filename:    "report.txt",
		ContentType: "text/plain",
		SizeBytes:   int64(len(content)),
		DocClass:    documents.DocClassUnclassified,
		Stage:       documents.StageIngested,
		StorageKey:  "documents/" + id.String() + "/report.txt",
	}, []byte(content)
}

func TestPipelineTextDocumentToReady(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	content := "The annual boiler inspection found a serious injury hazard near the access ladder. " +
		"Guard rails must be installed before the next maintenance window."
	doc, data := textDocument(content)
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, data)

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageReady {
		t.Fatalf("Stage = %s, want READY (errors: %v)", final.Stage, final.Errors)
	}
	if final.Category != documents.CategoryText {
		t.Errorf("Category = %q, want text", final.Category)
	}
	if final.Language != documents.LanguageEnglish {
		t.Errorf("Language = %q, want english", final.Language)
	}

	if !h.storage.has("documents/" + doc.ID.String() + "/extracted.json") {
		t.Error("extraction artifact not persisted")
	}
	if !h.storage.has("documents/" + doc.ID.String() + "/preprocessed.txt") {
		t.Error("preprocessing artifact not persisted")
	}

	stored, _ := h.chunks.ListByDocument(context.Background(), doc.ID)
	if len(stored) == 0 {
		t.Fatal("no chunks stored")
	}
	vectors, _ := h.vectors.ListByDocument(context.Background(), doc.ID)
	if len(vectors) != len(stored) {
		t.Errorf("vectors = %d, want %d", len(vectors), len(stored))
	}
	for _, v := range vectors {
		if v.ModelVersion != "test-embed" {
			t.Errorf("ModelVersion = %q", v.ModelVersion)
		}
	}

	events, _ := h.notifications.ListByDocument(context.Background(), doc.ID)
	if len(events) != len(stored) {
		t.Errorf("events = %d, want one per chunk", len(events))
	}
	for _, ev := range events {
		if ev.Category != "safety_incident" || ev.Priority != "critical" {
			t.Errorf("event = %+v", ev)
		}
	}
}

func TestPipelineRejectsOversizedFile(t *testing.T) {
	h := newHarness(t, pipeline.Config{MaxFileSize: 10, ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	doc, data := textDocument("this content is longer than ten bytes")
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, data)

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageRejected {
		t.Fatalf("Stage = %s, want REJECTED", final.Stage)
	}
	if len(final.Errors) == 0 {
		t.Error("rejection not recorded in document errors")
	}
}

func TestPipelineRejectsGarbageText(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	doc, _ := textDocument("")
	data := []byte("\x01\x02\x03\x04\x05\x06\x07\x08\x01\x02\x03\x04")
	doc.SizeBytes = int64(len(data))
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, data)

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageRejected {
		t.Fatalf("Stage = %s, want REJECTED (errors: %v)", final.Stage, final.Errors)
	}
}

func TestPipelineUnknownCategoryGoesToHumanReview(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	id := uuid.New()
	doc := documents.Document{
		ID:          id,
		Filename:    "payload.bin",
		ContentType: "application/octet-stream",
		SizeBytes:   6,
		DocClass:    documents.DocClassUnclassified,
		Stage:       documents.StageIngested,
		StorageKey:  "documents/" + id.String() + "/payload.bin",
	}
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe})

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageHumanReview {
		t.Fatalf("Stage = %s, want HUMAN_REVIEW (errors: %v)", final.Stage, final.Errors)
	}
}

// gradientPNG renders a smooth horizontal ramp: strong contrast and
// clean signal but no sharp detail, which lands the composite quality
// score in the enhancement band.
func gradientPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / 199)})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes()
}

func TestPipelineEnhancesBorderlineImageOnce(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	id := uuid.New()
	data := gradientPNG(t)
	doc := documents.Document{
		ID:          id,
		Filename:    "scan.png",
		ContentType: "image/png",
		SizeBytes:   int64(len(data)),
		DocClass:    documents.DocClassUnclassified,
		Stage:       documents.StageIngested,
		StorageKey:  "documents/" + id.String() + "/scan.png",
	}
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, data)

	h.run(t, doc.ID)

	// The scan re-scores into the enhance band again, so it goes to
	// human review rather than looping.
	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageHumanReview {
		t.Fatalf("Stage = %s, want HUMAN_REVIEW (errors: %v)", final.Stage, final.Errors)
	}
	if final.QualityDecision != "needs_review" {
		t.Errorf("QualityDecision = %q, want needs_review", final.QualityDecision)
	}
	if final.QualityScore <= 0 {
		t.Errorf("QualityScore = %v, want re-scored value recorded", final.QualityScore)
	}

	// Exactly one enhanced blob was written back: the pass ran once.
	if got := h.storage.uploadCount(doc.StorageKey); got != 1 {
		t.Errorf("enhanced uploads = %d, want 1", got)
	}
	enhanced, err := h.storage.GetBytes(context.Background(), doc.StorageKey)
	if err != nil {
		t.Fatalf("reading enhanced blob: %v", err)
	}
	if bytes.Equal(enhanced, data) {
		t.Error("stored blob unchanged, want enhanced overwrite")
	}
}

func TestPipelineUnknownCategoryExtractsReadableText(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	id := uuid.New()
	content := "Contractor badge scans from the turbine hall were exported without a file extension. " +
		"The register lists eleven entries for the night shift."
	doc := documents.Document{
		ID:          id,
		Filename:    "export",
		ContentType: "application/octet-stream",
		Category:    documents.CategoryUnknown,
		DocClass:    documents.DocClassUnclassified,
		SizeBytes:   int64(len(content)),
		Stage:       documents.StageTypeDetected,
		StorageKey:  "documents/" + id.String() + "/export",
	}
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, []byte(content))

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageReady {
		t.Fatalf("Stage = %s, want READY (errors: %v)", final.Stage, final.Errors)
	}
	stored, _ := h.chunks.ListByDocument(context.Background(), doc.ID)
	if len(stored) == 0 {
		t.Error("no chunks stored for unknown-category document")
	}
}

func TestPipelineResumesFromPersistedStage(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	id := uuid.New()
	doc := documents.Document{
		ID:         id,
		Filename:   "report.txt",
		Category:   documents.CategoryText,
		DocClass:   documents.DocClassUnclassified,
		Language:   documents.LanguageEnglish,
		Stage:      documents.StagePreprocessed,
		StorageKey: "documents/" + id.String() + "/report.txt",
	}
	h.docs.add(doc)
	// Only the stage artifacts exist; the original blob is not needed
	// to resume from PREPROCESSED.
	h.storage.put("documents/"+id.String()+"/extracted.json", []byte(`{"text":"ignored","confidence":0.9}`))
	h.storage.put("documents/"+id.String()+"/preprocessed.txt", []byte("Resumed content with enough words to form a viable chunk for embedding and scanning."))

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageReady {
		t.Fatalf("Stage = %s, want READY (errors: %v)", final.Stage, final.Errors)
	}
	stored, _ := h.chunks.ListByDocument(context.Background(), doc.ID)
	if len(stored) == 0 {
		t.Error("resumed run stored no chunks")
	}
}

func TestPipelineTransientFailureExhaustsRetries(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	doc, data := textDocument("perfectly fine content that storage refuses to serve")
	h.docs.add(doc)
	h.storage.put(doc.StorageKey, data)
	h.storage.failGets = 1 << 30

	h.run(t, doc.ID)

	final := h.docs.get(doc.ID)
	if final.Stage != documents.StageFailed {
		t.Fatalf("Stage = %s, want FAILED", final.Stage)
	}
	if len(final.Errors) == 0 {
		t.Error("failure not recorded in document errors")
	}
}

func TestSubmitRules(t *testing.T) {
	h := newHarness(t, pipeline.Config{ConfusionThreshold: 0.85, MinExtractionConfidence: 0.3})

	ctx := context.Background()
	if err := h.orch.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	rejected, _ := textDocument("x")
	rejected.Stage = documents.StageRejected
	h.docs.add(rejected)

	failed, _ := textDocument("x")
	failed.Stage = documents.StageFailed
	h.docs.add(failed)

	ready, _ := textDocument("x")
	ready.Stage = documents.StageReady
	h.docs.add(ready)

	if err := h.orch.Submit(ctx, rejected.ID); !errors.Is(err, pipeline.ErrValidation) {
		t.Errorf("Submit(rejected) error = %v, want ErrValidation", err)
	}
	if err := h.orch.Submit(ctx, failed.ID); !errors.Is(err, pipeline.ErrValidation) {
		t.Errorf("Submit(failed) error = %v, want ErrValidation", err)
	}
	if err := h.orch.Submit(ctx, ready.ID); err != nil {
		t.Errorf("Submit(ready) error = %v, want idempotent accept", err)
	}
	if err := h.orch.Submit(ctx, uuid.New()); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Submit(missing) error = %v, want ErrNotFound", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := h.orch.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if err := h.orch.Submit(ctx, ready.ID); !errors.Is(err, pipeline.ErrTransient) {
		t.Errorf("Submit after shutdown error = %v, want ErrTransient", err)
	}

	if final := h.docs.get(ready.ID); final.Stage != documents.StageReady {
		t.Errorf("ready document Stage = %s after resubmit", final.Stage)
	}
}
