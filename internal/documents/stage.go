package documents

// Stage identifies a document's position in the processing pipeline.
type Stage string

// Pipeline stages in forward order, plus terminal outcomes.
const (
	StageIngested        Stage = "INGESTED"
	StageTypeDetected    Stage = "TYPE_DETECTED"
	StageQualityAssessed Stage = "QUALITY_ASSESSED"
	StageEnhancing       Stage = "ENHANCING"
	StageExtracted       Stage = "EXTRACTED"
	StagePreprocessed    Stage = "PREPROCESSED"
	StageChunked         Stage = "CHUNKED"
	StageEmbedded        Stage = "EMBEDDED"
	StageScanned         Stage = "SCANNED"
	StageReady           Stage = "READY"

	StageRejected    Stage = "REJECTED"
	StageFailed      Stage = "FAILED"
	StageHumanReview Stage = "HUMAN_REVIEW"
)

// transitions lists the allowed forward edges of the stage machine.
// REJECTED and FAILED are reachable from any non-terminal stage and are
// handled by CanTransition directly rather than enumerated here.
var transitions = map[Stage][]Stage{
	StageIngested:        {StageTypeDetected},
	StageTypeDetected:    {StageQualityAssessed},
	StageQualityAssessed: {StageEnhancing, StageExtracted, StageHumanReview},
	StageEnhancing:       {StageQualityAssessed},
	StageExtracted:       {StagePreprocessed, StageHumanReview},
	StagePreprocessed:    {StageChunked},
	StageChunked:         {StageEmbedded},
	StageEmbedded:        {StageScanned},
	StageScanned:         {StageReady, StageHumanReview},
}

// Terminal reports whether the stage is a pipeline endpoint.
func (s Stage) Terminal() bool {
	switch s {
	case StageReady, StageRejected, StageFailed, StageHumanReview:
		return true
	}
	return false
}

// Valid reports whether s is a recognized stage.
func (s Stage) Valid() bool {
	if s.Terminal() {
		return true
	}
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal stage
// transition. Any non-terminal stage may fail or be rejected.
func (s Stage) CanTransition(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageRejected || next == StageFailed {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
