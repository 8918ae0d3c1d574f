package chunker

import (
	"regexp"
	"strings"

	"github.com/praval-labs/praval/internal/chunks"
)

// paragraphStrategy splits on blank lines. It is the universal
// fallback and the strategy for unclassified documents.
type paragraphStrategy struct{}

func (s *paragraphStrategy) split(text string) []piece {
	var pieces []piece
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		pieces = append(pieces, piece{text: block, chunkType: chunks.TypeParagraph})
	}
	return pieces
}

var headingRe = regexp.MustCompile(`^(#{1,6}\s+\S|\d+(\.\d+)*\.?\s+\S|[A-Z][A-Z0-9 \-]{3,}$)`)

// sectionStrategy groups content under heading lines: markdown
// headings, numbered headings (`3.2 Cooling circuit`), or all-caps
// lines. Suits engineering documents with section structure.
type sectionStrategy struct{}

func (s *sectionStrategy) split(text string) []piece {
	return splitOnMarkers(text, chunks.TypeSection, func(line string) bool {
		return headingRe.MatchString(line)
	})
}

var recordRe = regexp.MustCompile(`^[A-Za-z$][\w .#/-]*:\s*\S`)

// engineeringStrategy emits one self-contained metadata record per
// chunk for CAD-derived documents, whose extracted text is dominated
// by key/value container fields (drawing number, revision, scale).
// Prose-heavy engineering documents fall through to section splitting.
type engineeringStrategy struct {
	sections sectionStrategy
}

func (s *engineeringStrategy) split(text string) []piece {
	var records []piece
	var nonEmpty int

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nonEmpty++
		if recordRe.MatchString(line) {
			records = append(records, piece{text: line, chunkType: chunks.TypeMetadata})
		}
	}

	if nonEmpty > 0 && len(records)*2 >= nonEmpty {
		return records
	}
	return s.sections.split(text)
}

var stepRe = regexp.MustCompile(`^(\d+[.)]\s+|step\s+\d+|[-*]\s+)`)

// stepStrategy splits on numbered or bulleted procedure steps for
// maintenance documents.
type stepStrategy struct{}

func (s *stepStrategy) split(text string) []piece {
	return splitOnMarkers(text, chunks.TypeStep, func(line string) bool {
		return stepRe.MatchString(strings.ToLower(line))
	})
}

var timestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{1,2}[:/]\d{2}|\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec))`)

// eventStrategy splits incident narratives on timestamp-prefixed
// lines, grouping each event with its following narrative.
type eventStrategy struct{}

func (s *eventStrategy) split(text string) []piece {
	return splitOnMarkers(text, chunks.TypeEvent, func(line string) bool {
		return timestampRe.MatchString(strings.ToLower(line))
	})
}

// tableStrategy groups delimiter-structured lines into table chunks
// and surrounding prose into paragraphs. Suits financial documents
// dominated by tabular data.
type tableStrategy struct{}

func (s *tableStrategy) split(text string) []piece {
	var pieces []piece
	var table, prose []string

	flushTable := func() {
		if len(table) > 0 {
			pieces = append(pieces, piece{
				text:      strings.Join(table, "\n"),
				chunkType: chunks.TypeTable,
			})
			table = nil
		}
	}
	flushProse := func() {
		block := strings.TrimSpace(strings.Join(prose, "\n"))
		if block != "" {
			pieces = append(pieces, piece{text: block, chunkType: chunks.TypeParagraph})
		}
		prose = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if isTabular(line) {
			flushProse()
			table = append(table, line)
		} else {
			flushTable()
			prose = append(prose, line)
		}
	}
	flushTable()
	flushProse()

	return pieces
}

// isTabular reports whether a line looks like a table row: pipe or
// comma delimited with at least three cells, or multiple column gaps.
func isTabular(line string) bool {
	if strings.Count(line, "|") >= 2 || strings.Count(line, ",") >= 3 {
		return true
	}
	return strings.Count(line, "  ") >= 2 && len(strings.Fields(line)) >= 3
}

var clauseRe = regexp.MustCompile(`^(article|section|clause|§)\s+\d+|^\d+(\.\d+)*\.?\s+\S`)

// clauseStrategy splits regulatory text on clause and article
// numbering so each obligation stays in one chunk.
type clauseStrategy struct{}

func (s *clauseStrategy) split(text string) []piece {
	return splitOnMarkers(text, chunks.TypeClause, func(line string) bool {
		return clauseRe.MatchString(strings.ToLower(line))
	})
}

// splitOnMarkers groups lines into pieces starting at each marker
// line. Content before the first marker becomes a paragraph piece.
func splitOnMarkers(text string, t chunks.Type, isMarker func(string) bool) []piece {
	var pieces []piece
	var current []string
	inMarked := false

	flush := func() {
		block := strings.TrimSpace(strings.Join(current, "\n"))
		if block == "" {
			current = nil
			return
		}
		ct := t
		if !inMarked {
			ct = chunks.TypeParagraph
		}
		pieces = append(pieces, piece{text: block, chunkType: ct})
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if isMarker(strings.TrimSpace(line)) {
			flush()
			inMarked = true
		}
		current = append(current, line)
	}
	flush()

	return pieces
}
