// Package preprocess normalizes extracted text before chunking:
// whitespace cleanup, conservative OCR error repair, language
// detection, and duplicate fragment removal.
package preprocess

import (
	"strings"
)

// Input carries extracted text with its extraction confidence. The
// confidence gates OCR error correction: text from reliable extraction
// is never rewritten.
type Input struct {
	Text       string
	Confidence float64
}

// Output is the normalized text with detected language properties.
type Output struct {
	Text             string
	Language         string
	NeedsTranslation bool
	RemovedFragments int
}

// Processor applies the normalization passes in a fixed order.
type Processor struct {
	// ConfusionThreshold is the extraction confidence below which OCR
	// confusion repair is applied.
	ConfusionThreshold float64
}

// New creates a Processor with the given confusion repair threshold.
func New(confusionThreshold float64) *Processor {
	return &Processor{ConfusionThreshold: confusionThreshold}
}

// Run executes normalization: whitespace collapse, optional OCR repair,
// fragment deduplication, then language detection on the final text.
func (p *Processor) Run(in Input) Output {
	text := normalizeWhitespace(in.Text)

	if in.Confidence < p.ConfusionThreshold {
		text = repairConfusions(text)
	}

	text, removed := dedupeFragments(text)

	lang, needsTranslation := DetectLanguage(text)

	return Output{
		Text:             text,
		Language:         lang,
		NeedsTranslation: needsTranslation,
		RemovedFragments: removed,
	}
}

// normalizeWhitespace collapses runs of spaces and tabs, trims trailing
// whitespace per line, and limits consecutive blank lines to one.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.TrimSpace(collapseSpaces(line))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, line)
		blank = false
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}

func collapseSpaces(line string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range line {
		if r == ' ' || r == '\t' {
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}
	return sb.String()
}

// dedupeFragments removes repeated lines, comparing case-insensitively
// with whitespace differences ignored. The first occurrence survives.
// Short lines are kept unconditionally since repetition of headings or
// list markers is usually intentional.
func dedupeFragments(text string) (string, int) {
	const minDedupeLen = 20

	lines := strings.Split(text, "\n")
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))
	removed := 0

	for _, line := range lines {
		key := canonicalFragment(line)
		if len(key) >= minDedupeLen {
			if seen[key] {
				removed++
				continue
			}
			seen[key] = true
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n"), removed
}

func canonicalFragment(line string) string {
	return strings.ToLower(strings.Join(strings.Fields(line), " "))
}
