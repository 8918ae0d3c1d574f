package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
)

// perEntryLimit caps decompressed size per archive entry to guard
// against zip bombs.
const perEntryLimit = 64 << 20

type officeProcessor struct{}

func (p *officeProcessor) Extract(_ context.Context, data []byte, filename string) (*Result, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".odt":
		return extractArchiveXML(r, "content.xml")
	default:
		return extractArchiveXML(r, "word/document.xml")
	}
}

// extractArchiveXML pulls paragraph text out of the named XML entry.
// Both OOXML (w:p/w:t) and ODF (text:p) use "p" for paragraphs, so one
// token walk covers docx and odt.
func extractArchiveXML(r *zip.Reader, entryName string) (*Result, error) {
	var entry *zip.File
	for _, f := range r.File {
		if f.Name == entryName {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%s not found in archive", entryName)
	}
	if entry.UncompressedSize64 > perEntryLimit {
		return nil, fmt.Errorf("%s exceeds decompression limit", entryName)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", entryName, err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	var current strings.Builder
	var inParagraph bool
	paragraphs := 0

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				current.Reset()
			}

		case xml.CharData:
			if inParagraph {
				current.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					continue
				}
				paragraphs++
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
	}

	if paragraphs == 0 {
		return nil, fmt.Errorf("no text content in %s", entryName)
	}

	return &Result{
		Text:       sb.String(),
		Confidence: 1.0,
		Metadata: map[string]string{
			"paragraphs": fmt.Sprintf("%d", paragraphs),
		},
	}, nil
}
