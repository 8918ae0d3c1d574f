// Package triage classifies incoming documents by type and assesses their
// quality before the pipeline commits to extraction. Detection combines
// three signals with fixed weights; quality assessment routes each document
// to processing, enhancement, rejection, or human review.
package triage

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/praval-labs/praval/internal/documents"
)

// Signal weights for category voting. Content sniffing is the strongest
// signal since extensions and declared types are client-controlled.
const (
	weightExtension = 0.2
	weightDeclared  = 0.3
	weightSniffed   = 0.5
)

// Detection is the outcome of category detection for a document.
type Detection struct {
	Category   string  `json:"category"`
	MIME       string  `json:"mime"`
	Confidence float64 `json:"confidence"`
}

var extensionCategories = map[string]string{
	".txt":  documents.CategoryText,
	".md":   documents.CategoryText,
	".csv":  documents.CategoryText,
	".log":  documents.CategoryText,
	".pdf":  documents.CategoryPDF,
	".docx": documents.CategoryOffice,
	".odt":  documents.CategoryOffice,
	".png":  documents.CategoryImage,
	".jpg":  documents.CategoryImage,
	".jpeg": documents.CategoryImage,
	".tif":  documents.CategoryImage,
	".tiff": documents.CategoryImage,
	".bmp":  documents.CategoryImage,
	".webp": documents.CategoryImage,
	".dxf":  documents.CategoryCAD,
	".dwg":  documents.CategoryCAD,
}

var mimeCategories = map[string]string{
	"text/plain":      documents.CategoryText,
	"text/markdown":   documents.CategoryText,
	"text/csv":        documents.CategoryText,
	"application/pdf": documents.CategoryPDF,
	"image/png":       documents.CategoryImage,
	"image/jpeg":      documents.CategoryImage,
	"image/tiff":      documents.CategoryImage,
	"image/bmp":       documents.CategoryImage,
	"image/webp":      documents.CategoryImage,
	"image/vnd.dxf":   documents.CategoryCAD,
	"image/vnd.dwg":   documents.CategoryCAD,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": documents.CategoryOffice,
	"application/vnd.oasis.opendocument.text":                                 documents.CategoryOffice,
}

func categoryFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if cat, ok := extensionCategories[ext]; ok {
		return cat
	}
	return documents.CategoryUnknown
}

func categoryFromMIME(mime string) string {
	base := mime
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	if cat, ok := mimeCategories[base]; ok {
		return cat
	}
	if strings.HasPrefix(base, "text/") {
		return documents.CategoryText
	}
	return documents.CategoryUnknown
}

// Detect determines a document's category by combining the filename
// extension, the client-declared content type, and content sniffing.
// Each signal votes with its weight and the category with the largest
// weighted total wins. Confidence is the winner's share of the total
// weight cast by signals that produced a category. Detection never
// fails: when no signal recognizes the content the result is the
// unknown category with zero confidence.
func Detect(filename, declaredType string, data []byte) Detection {
	sniffed := mimetype.Detect(data)

	votes := map[string]float64{}
	var cast float64

	addVote := func(cat string, weight float64) {
		if cat == documents.CategoryUnknown {
			return
		}
		votes[cat] += weight
		cast += weight
	}

	addVote(categoryFromExtension(filename), weightExtension)
	addVote(categoryFromMIME(declaredType), weightDeclared)
	addVote(categoryFromMIME(sniffed.String()), weightSniffed)

	if cast == 0 {
		return Detection{
			Category: documents.CategoryUnknown,
			MIME:     sniffed.String(),
		}
	}

	winner := documents.CategoryUnknown
	var best float64
	for cat, weight := range votes {
		if weight > best || (weight == best && cat < winner) {
			winner = cat
			best = weight
		}
	}

	return Detection{
		Category:   winner,
		MIME:       sniffed.String(),
		Confidence: best / cast,
	}
}
