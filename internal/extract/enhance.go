package extract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// Enhance applies a single corrective pass to a borderline scan:
// denoise, grayscale conversion, contrast stretch, and sharpening. The
// result is re-encoded as PNG for reassessment. Enhancement runs at
// most once per document.
func Enhance(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	enhanced := imaging.Blur(img, 0.6)
	enhanced = imaging.Grayscale(enhanced)
	enhanced = imaging.AdjustContrast(enhanced, 20)
	enhanced = imaging.Sharpen(enhanced, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, enhanced); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}
