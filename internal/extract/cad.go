package extract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
)

type cadProcessor struct{}

// Extract reads metadata from DXF header variables and title-block text
// entities. Geometry is not interpreted; the result carries a flag
// indicating a specialized viewer is required for full content.
func (p *cadProcessor) Extract(_ context.Context, data []byte, _ string) (*Result, error) {
	if !bytes.Contains(data, []byte("SECTION")) {
		// Binary DWG or unrecognized CAD payload: metadata only.
		return &Result{
			Confidence:     0.1,
			RequiresViewer: true,
			Metadata:       map[string]string{"format": "binary"},
		}, nil
	}

	metadata := map[string]string{"format": "dxf"}
	var texts []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var prevCode string
	var pendingVar string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "$"):
			pendingVar = strings.TrimPrefix(line, "$")
		case prevCode == "1" && line != "":
			// Group code 1 carries primary text values: header
			// variable strings and TEXT/MTEXT entity content.
			if pendingVar != "" {
				metadata[strings.ToLower(pendingVar)] = line
				pendingVar = ""
			} else {
				texts = append(texts, line)
			}
		}

		prevCode = line
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(texts) == 0 && len(metadata) == 1 {
		return nil, errors.New("no text entities in dxf")
	}

	return &Result{
		Text:           strings.Join(texts, "\n"),
		Confidence:     0.5,
		Metadata:       metadata,
		RequiresViewer: true,
	}, nil
}
