// Package chunker segments preprocessed text into retrieval units.
// The declared document class selects a structure-aware strategy;
// unclassified documents fall back to paragraph chunking. Chunking is
// deterministic: the same input always yields the same chunk set.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/praval-labs/praval/internal/chunks"
	"github.com/praval-labs/praval/internal/documents"
)

// Limits bounds chunk sizes in words. Pieces below Min merge with
// their successor; pieces above Max split at the nearest sentence
// boundary.
type Limits struct {
	Min int `toml:"min_words"`
	Max int `toml:"max_words"`
}

// DefaultLimits returns the standard chunk size bounds.
func DefaultLimits() Limits {
	return Limits{Min: 40, Max: 400}
}

// piece is an intermediate chunk before sizing and identity assignment.
type piece struct {
	text      string
	chunkType chunks.Type
}

// strategy segments text into typed pieces.
type strategy interface {
	split(text string) []piece
}

// overlap describes the context carried between adjacent chunks: tail
// sentences or paragraphs of the previous chunk prepended to the next,
// or the header row repeated across split table chunks. Metadata
// records are self-contained and carry no overlap.
type overlap struct {
	sentences  int
	paragraphs int
	header     bool
}

// Engine dispatches chunking by document class.
type Engine struct {
	strategies map[string]strategy
	overlaps   map[string]overlap
	fallback   strategy
	limits     Limits
}

// New creates an Engine with a strategy per document class.
func New(limits Limits) *Engine {
	paragraph := &paragraphStrategy{}

	return &Engine{
		strategies: map[string]strategy{
			documents.DocClassEngineering: &engineeringStrategy{},
			documents.DocClassMaintenance: &stepStrategy{},
			documents.DocClassIncident:    &eventStrategy{},
			documents.DocClassFinancial:   &tableStrategy{},
			documents.DocClassRegulatory:  &clauseStrategy{},
		},
		overlaps: map[string]overlap{
			documents.DocClassEngineering:  {},
			documents.DocClassMaintenance:  {sentences: 1},
			documents.DocClassIncident:     {sentences: 2},
			documents.DocClassFinancial:    {header: true},
			documents.DocClassRegulatory:   {paragraphs: 1},
			documents.DocClassUnclassified: {sentences: 1},
		},
		fallback: paragraph,
		limits:   limits,
	}
}

// Run chunks the text for a document, producing the complete ordered
// chunk set with deterministic identifiers.
func (e *Engine) Run(documentID uuid.UUID, docClass, language string, confidence float64, text string) []chunks.Chunk {
	s, ok := e.strategies[docClass]
	if !ok {
		s = e.fallback
	}

	pieces := s.split(text)
	if len(pieces) == 0 {
		pieces = e.fallback.split(text)
	}

	pieces = e.resize(pieces)

	ov, ok := e.overlaps[docClass]
	if !ok {
		ov = overlap{sentences: 1}
	}
	pieces = applyOverlap(pieces, ov)

	out := make([]chunks.Chunk, len(pieces))
	for i, p := range pieces {
		out[i] = chunks.Chunk{
			ID:         chunks.ChunkID(documentID, i),
			DocumentID: documentID,
			Index:      i,
			Total:      len(pieces),
			Text:       p.text,
			Type:       p.chunkType,
			Language:   language,
			WordCount:  wordCount(p.text),
			Confidence: confidence,
		}
	}

	return out
}

// resize merges undersized pieces forward and splits oversized pieces
// at sentence boundaries. Merging never crosses a type boundary, and
// metadata records never merge: each record stands on its own.
func (e *Engine) resize(pieces []piece) []piece {
	merged := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if len(merged) > 0 && p.chunkType != chunks.TypeMetadata {
			last := &merged[len(merged)-1]
			if wordCount(last.text) < e.limits.Min && last.chunkType == p.chunkType {
				last.text = last.text + "\n" + p.text
				continue
			}
		}
		merged = append(merged, p)
	}

	out := make([]piece, 0, len(merged))
	for _, p := range merged {
		if wordCount(p.text) <= e.limits.Max {
			out = append(out, p)
			continue
		}
		// Tables split on row boundaries so the header row survives
		// for repetition; everything else splits on sentences.
		split := splitByWords
		if p.chunkType == chunks.TypeTable {
			split = splitByLines
		}
		for _, part := range split(p.text, e.limits.Max) {
			out = append(out, piece{text: part, chunkType: p.chunkType})
		}
	}

	return out
}

// splitByLines splits line-structured text into segments of at most
// maxWords, never breaking inside a line.
func splitByLines(text string, maxWords int) []string {
	var parts []string
	var current []string
	words := 0

	for _, line := range strings.Split(text, "\n") {
		lw := wordCount(line)
		if len(current) > 0 && words+lw > maxWords {
			parts = append(parts, strings.Join(current, "\n"))
			current, words = nil, 0
		}
		current = append(current, line)
		words += lw
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, "\n"))
	}
	return parts
}

// applyOverlap carries context between adjacent chunks: each chunk
// after the first is prefixed with the tail of its predecessor's
// original text, and table chunks split from the same run repeat the
// run's header row. Metadata records are left untouched.
func applyOverlap(pieces []piece, ov overlap) []piece {
	if len(pieces) < 2 {
		return pieces
	}

	out := make([]piece, len(pieces))
	copy(out, pieces)

	if ov.header {
		var header string
		for i, p := range pieces {
			if p.chunkType != chunks.TypeTable {
				header = ""
				continue
			}
			if header == "" {
				header, _, _ = strings.Cut(p.text, "\n")
				continue
			}
			out[i].text = header + "\n" + p.text
		}
		return out
	}

	if ov.sentences == 0 && ov.paragraphs == 0 {
		return pieces
	}

	for i := 1; i < len(pieces); i++ {
		if pieces[i].chunkType == chunks.TypeMetadata {
			continue
		}
		if carry := tail(pieces[i-1].text, ov); carry != "" {
			out[i].text = carry + "\n" + pieces[i].text
		}
	}
	return out
}

// tail returns the trailing sentences or paragraph of a chunk's text
// for use as overlap context in its successor.
func tail(text string, ov overlap) string {
	if ov.paragraphs > 0 {
		blocks := strings.Split(text, "\n\n")
		if len(blocks) > ov.paragraphs {
			blocks = blocks[len(blocks)-ov.paragraphs:]
		}
		return strings.TrimSpace(strings.Join(blocks, "\n\n"))
	}

	sentences := splitSentences(text)
	if len(sentences) > ov.sentences {
		sentences = sentences[len(sentences)-ov.sentences:]
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}

// splitByWords splits text into segments of at most maxWords, breaking
// at sentence ends where one falls inside the window.
func splitByWords(text string, maxWords int) []string {
	sentences := splitSentences(text)

	var parts []string
	var current strings.Builder
	currentWords := 0

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			currentWords = 0
		}
	}

	for _, s := range sentences {
		sw := wordCount(s)

		// A single oversized sentence splits on raw word windows.
		if sw > maxWords {
			flush()
			words := strings.Fields(s)
			for start := 0; start < len(words); start += maxWords {
				end := min(start+maxWords, len(words))
				parts = append(parts, strings.Join(words[start:end], " "))
			}
			continue
		}

		if currentWords+sw > maxWords {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(s)
		currentWords += sw
	}
	flush()

	return parts
}

// splitSentences divides text on terminal punctuation followed by
// whitespace. Newlines also terminate sentences.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		terminal := c == '.' || c == '!' || c == '?'
		if c == '\n' || (terminal && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n')) {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
