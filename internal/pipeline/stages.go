package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/documents"
	"github.com/praval-labs/praval/internal/extract"
	"github.com/praval-labs/praval/internal/preprocess"
	"github.com/praval-labs/praval/internal/triage"
)

// decisionNeedsReview routes a document to human review at the next
// quality-assessed step. It is produced for unknown categories and for
// scans still borderline after enhancement.
const decisionNeedsReview = "needs_review"

func extractedKey(id uuid.UUID) string {
	return fmt.Sprintf("documents/%s/extracted.json", id)
}

func preprocessedKey(id uuid.UUID) string {
	return fmt.Sprintf("documents/%s/preprocessed.txt", id)
}

// step executes the work for the document's current stage and persists
// the resulting transition.
func (o *Orchestrator) step(ctx context.Context, doc *documents.Document) error {
	switch doc.Stage {
	case documents.StageIngested:
		return o.stepDetectType(ctx, doc)
	case documents.StageTypeDetected:
		return o.stepAssessQuality(ctx, doc)
	case documents.StageQualityAssessed:
		return o.stepRouteQuality(ctx, doc)
	case documents.StageEnhancing:
		return o.stepEnhance(ctx, doc)
	case documents.StageExtracted:
		return o.stepPreprocess(ctx, doc)
	case documents.StagePreprocessed:
		return o.stepChunk(ctx, doc)
	case documents.StageChunked:
		return o.stepEmbed(ctx, doc)
	case documents.StageEmbedded:
		return o.stepScan(ctx, doc)
	case documents.StageScanned:
		return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageReady, documents.StageUpdate{})
	default:
		return fmt.Errorf("%w: unrecognized stage %s", ErrValidation, doc.Stage)
	}
}

func (o *Orchestrator) stepDetectType(ctx context.Context, doc *documents.Document) error {
	if o.cfg.MaxFileSize > 0 && doc.SizeBytes > o.cfg.MaxFileSize {
		return fmt.Errorf("%w: file size %d exceeds limit %d", ErrValidation, doc.SizeBytes, o.cfg.MaxFileSize)
	}

	data, err := o.download(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	detection := triage.Detect(doc.Filename, doc.ContentType, data)

	o.logger.Info("type detected",
		"document_id", doc.ID,
		"category", detection.Category,
		"confidence", detection.Confidence,
	)

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageTypeDetected, documents.StageUpdate{
		Category:            &detection.Category,
		DetectionConfidence: &detection.Confidence,
	})
}

func (o *Orchestrator) stepAssessQuality(ctx context.Context, doc *documents.Document) error {
	data, err := o.download(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	assessment := o.assess(doc.Category, data)

	o.logger.Info("quality assessed",
		"document_id", doc.ID,
		"score", assessment.Score,
		"decision", assessment.Decision,
	)

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageQualityAssessed, documents.StageUpdate{
		QualityScore:    &assessment.Score,
		QualityDecision: &assessment.Decision,
	})
}

// assess routes quality assessment by category. Structured formats
// carry their quality signal in extraction, so they pass with a fixed
// score. Unknown categories are scored as text: readable content
// proceeds to the extraction fallback chain, anything else goes to
// human review.
func (o *Orchestrator) assess(category string, data []byte) triage.Assessment {
	switch category {
	case documents.CategoryImage:
		return triage.AssessImage(data, o.cfg.Weights, o.cfg.Thresholds)
	case documents.CategoryText:
		return triage.AssessText(data, o.cfg.Thresholds)
	case documents.CategoryUnknown:
		assessment := triage.AssessText(data, o.cfg.Thresholds)
		if assessment.Decision != triage.DecisionProcess {
			assessment.Decision = decisionNeedsReview
		}
		return assessment
	default:
		if len(data) == 0 {
			return triage.Assessment{Decision: triage.DecisionReject}
		}
		return triage.Assessment{Score: 1, Decision: triage.DecisionProcess}
	}
}

func (o *Orchestrator) stepRouteQuality(ctx context.Context, doc *documents.Document) error {
	switch doc.QualityDecision {
	case triage.DecisionProcess:
		return o.runExtraction(ctx, doc)

	case triage.DecisionEnhance:
		if doc.Category != documents.CategoryImage {
			// Non-image enhancement is not meaningful; hand off.
			return fmt.Errorf("%w: quality score %.2f", ErrLowConfidence, doc.QualityScore)
		}
		return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageEnhancing, documents.StageUpdate{})

	case triage.DecisionReject:
		if err := o.deps.Documents.RecordError(ctx, doc.ID, fmt.Sprintf("quality score %.2f below threshold", doc.QualityScore)); err != nil {
			return err
		}
		return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageRejected, documents.StageUpdate{})

	default:
		return fmt.Errorf("%w: document requires manual triage", ErrLowConfidence)
	}
}

// stepEnhance applies the single enhancement pass, overwrites the
// stored blob, and reassesses. A scan still in the enhance band after
// enhancement goes to human review rather than looping.
func (o *Orchestrator) stepEnhance(ctx context.Context, doc *documents.Document) error {
	data, err := o.download(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	enhanced, err := extract.Enhance(data)
	if err != nil {
		return fmt.Errorf("%w: enhance: %v", ErrExtraction, err)
	}

	if err := o.upload(ctx, doc.StorageKey, enhanced, "image/png"); err != nil {
		return err
	}

	assessment := triage.AssessImage(enhanced, o.cfg.Weights, o.cfg.Thresholds)
	if assessment.Decision == triage.DecisionEnhance {
		assessment.Decision = decisionNeedsReview
	}

	o.logger.Info("enhancement complete",
		"document_id", doc.ID,
		"score", assessment.Score,
		"decision", assessment.Decision,
	)

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageQualityAssessed, documents.StageUpdate{
		QualityScore:    &assessment.Score,
		QualityDecision: &assessment.Decision,
	})
}

func (o *Orchestrator) runExtraction(ctx context.Context, doc *documents.Document) error {
	data, err := o.download(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	result, err := o.deps.Extractor.Extract(ctx, doc.Category, data, doc.Filename)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("%w: encode extraction result: %v", ErrExtraction, err)
	}

	if err := o.upload(ctx, extractedKey(doc.ID), encoded, "application/json"); err != nil {
		return err
	}

	o.logger.Info("extraction complete",
		"document_id", doc.ID,
		"confidence", result.Confidence,
		"chars", len(result.Text),
	)

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageExtracted, documents.StageUpdate{})
}

func (o *Orchestrator) stepPreprocess(ctx context.Context, doc *documents.Document) error {
	result, err := o.loadExtraction(ctx, doc.ID)
	if err != nil {
		return err
	}

	if result.NeedsHumanReview {
		if err := o.deps.Documents.RecordError(ctx, doc.ID, "extraction produced no usable text"); err != nil {
			return err
		}
		return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageHumanReview, documents.StageUpdate{})
	}

	if result.Confidence < o.cfg.MinExtractionConfidence {
		return fmt.Errorf("%w: extraction confidence %.2f", ErrLowConfidence, result.Confidence)
	}

	out := o.deps.Preprocessor.Run(preprocess.Input{
		Text:       result.Text,
		Confidence: result.Confidence,
	})

	if err := o.upload(ctx, preprocessedKey(doc.ID), []byte(out.Text), "text/plain"); err != nil {
		return err
	}

	o.logger.Info("preprocessing complete",
		"document_id", doc.ID,
		"language", out.Language,
		"removed_fragments", out.RemovedFragments,
	)

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StagePreprocessed, documents.StageUpdate{
		Language:         &out.Language,
		NeedsTranslation: &out.NeedsTranslation,
	})
}

func (o *Orchestrator) stepChunk(ctx context.Context, doc *documents.Document) error {
	text, err := o.download(ctx, preprocessedKey(doc.ID))
	if err != nil {
		return err
	}

	result, err := o.loadExtraction(ctx, doc.ID)
	if err != nil {
		return err
	}

	set := o.deps.Chunker.Run(doc.ID, doc.DocClass, doc.Language, result.Confidence, string(text))
	if len(set) == 0 {
		return fmt.Errorf("%w: no content after preprocessing", ErrValidation)
	}

	if err := o.deps.Chunks.ReplaceAll(ctx, doc.ID, set); err != nil {
		return fmt.Errorf("%w: store chunks: %v", ErrTransient, err)
	}

	o.logger.Info("chunking complete", "document_id", doc.ID, "chunks", len(set))

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageChunked, documents.StageUpdate{})
}

func (o *Orchestrator) stepEmbed(ctx context.Context, doc *documents.Document) error {
	set, err := o.deps.Chunks.ListByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("%w: load chunks: %v", ErrTransient, err)
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: document has no chunks", ErrValidation)
	}

	entries, err := o.deps.Embedder.Generate(ctx, set)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: embed: %v", ErrTransient, err)
	}

	if err := o.deps.Vectors.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("%w: store embeddings: %v", ErrTransient, err)
	}

	o.logger.Info("embedding complete", "document_id", doc.ID, "vectors", len(entries))

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageEmbedded, documents.StageUpdate{})
}

func (o *Orchestrator) stepScan(ctx context.Context, doc *documents.Document) error {
	entries, err := o.deps.Vectors.ListByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("%w: load embeddings: %v", ErrTransient, err)
	}

	events, err := o.deps.Scanner.Scan(ctx, doc.ID, entries)
	if err != nil {
		return fmt.Errorf("%w: scan: %v", ErrTransient, err)
	}

	if len(events) > 0 {
		if err := o.deps.Notifications.Enqueue(ctx, doc.ID, events); err != nil {
			return fmt.Errorf("%w: enqueue notifications: %v", ErrTransient, err)
		}
	}

	o.logger.Info("scan complete", "document_id", doc.ID, "events", len(events))

	return o.deps.Documents.SetStage(ctx, doc.ID, documents.StageScanned, documents.StageUpdate{})
}

func (o *Orchestrator) loadExtraction(ctx context.Context, id uuid.UUID) (*extract.Result, error) {
	data, err := o.download(ctx, extractedKey(id))
	if err != nil {
		return nil, err
	}

	var result extract.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode extraction result: %v", ErrExtraction, err)
	}
	return &result, nil
}

func (o *Orchestrator) download(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := o.retry.Do(ctx, func() error {
		var err error
		data, err = o.deps.Storage.GetBytes(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: download %s: %v", ErrTransient, key, err)
		}
		return nil
	})
	return data, err
}

func (o *Orchestrator) upload(ctx context.Context, key string, data []byte, contentType string) error {
	return o.retry.Do(ctx, func() error {
		if err := o.deps.Storage.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			return fmt.Errorf("%w: upload %s: %v", ErrTransient, key, err)
		}
		return nil
	})
}
