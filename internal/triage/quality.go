package triage

import (
	"bytes"
	"image"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Quality routing decisions.
const (
	DecisionProcess = "process"
	DecisionEnhance = "enhance"
	DecisionReject  = "reject"
)

// Weights controls the contribution of each image metric to the
// composite quality score. Values should sum to 1.
type Weights struct {
	Sharpness  float64 `json:"sharpness" toml:"sharpness"`
	Contrast   float64 `json:"contrast" toml:"contrast"`
	Brightness float64 `json:"brightness" toml:"brightness"`
	Noise      float64 `json:"noise" toml:"noise"`
	Resolution float64 `json:"resolution" toml:"resolution"`
}

// DefaultWeights returns the standard metric weights.
func DefaultWeights() Weights {
	return Weights{
		Sharpness:  0.30,
		Contrast:   0.20,
		Brightness: 0.15,
		Noise:      0.15,
		Resolution: 0.20,
	}
}

// Thresholds maps composite scores to routing decisions. Scores at or
// above Process go straight to extraction; scores at or above Enhance
// get one enhancement pass; anything lower is rejected.
type Thresholds struct {
	Process float64 `json:"process" toml:"process"`
	Enhance float64 `json:"enhance" toml:"enhance"`
}

// DefaultThresholds returns the standard decision thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Process: 0.7,
		Enhance: 0.4,
	}
}

// Assessment is the outcome of quality assessment for a document.
type Assessment struct {
	Score    float64 `json:"score"`
	Decision string  `json:"decision"`
}

// Decide maps a composite score to a routing decision.
func (t Thresholds) Decide(score float64) string {
	switch {
	case score >= t.Process:
		return DecisionProcess
	case score >= t.Enhance:
		return DecisionEnhance
	default:
		return DecisionReject
	}
}

// AssessImage decodes an image and scores it on sharpness, contrast,
// brightness uniformity, noise, and resolution. Undecodable images are
// rejected with a zero score rather than failing the pipeline.
func AssessImage(data []byte, w Weights, t Thresholds) Assessment {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Assessment{Decision: DecisionReject}
	}

	gray := toGray(img)

	score := w.Sharpness*sharpnessScore(gray) +
		w.Contrast*contrastScore(gray) +
		w.Brightness*brightnessScore(gray) +
		w.Noise*noiseScore(gray) +
		w.Resolution*resolutionScore(img.Bounds())

	return Assessment{
		Score:    score,
		Decision: t.Decide(score),
	}
}

// AssessText scores plain text on printable character ratio, word-like
// token ratio, and size sanity. Empty or binary-looking content is
// rejected; borderline content is routed to enhancement so a human can
// opt it back in downstream.
func AssessText(data []byte, t Thresholds) Assessment {
	if len(data) == 0 {
		return Assessment{Decision: DecisionReject}
	}
	if !utf8.Valid(data) {
		return Assessment{Decision: DecisionReject}
	}

	text := string(data)
	printable := printableRatio(text)
	wordlike := wordlikeRatio(text)

	score := 0.6*printable + 0.4*wordlike

	return Assessment{
		Score:    score,
		Decision: t.Decide(score),
	}
}

// printableRatio returns the fraction of runes that are printable or
// common whitespace.
func printableRatio(text string) float64 {
	if text == "" {
		return 0
	}

	var printable, total int
	for _, r := range text {
		total++
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}

	return float64(printable) / float64(total)
}

// wordlikeRatio returns the fraction of whitespace-separated tokens
// that look like words: mostly letters or digits, reasonable length.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}

	var wordlike int
	for _, f := range fields {
		if isWordlike(f) {
			wordlike++
		}
	}

	return float64(wordlike) / float64(len(fields))
}

func isWordlike(token string) bool {
	runes := []rune(token)
	if len(runes) == 0 || len(runes) > 45 {
		return false
	}

	var letters int
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters++
		}
	}

	return float64(letters)/float64(len(runes)) >= 0.5
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// sharpnessScore estimates focus via the variance of a Laplacian
// convolution. Variance above the reference value saturates at 1.
func sharpnessScore(g *image.Gray) float64 {
	const reference = 500.0

	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	var sum, sumSq float64
	var n int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			lap := 4*center -
				float64(g.GrayAt(bounds.Min.X+x-1, bounds.Min.Y+y).Y) -
				float64(g.GrayAt(bounds.Min.X+x+1, bounds.Min.Y+y).Y) -
				float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y-1).Y) -
				float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y+1).Y)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	return clamp01(variance / reference)
}

// contrastScore measures intensity spread as standard deviation,
// normalized against a reference of 64 gray levels.
func contrastScore(g *image.Gray) float64 {
	const reference = 64.0

	_, stddev := grayStats(g)
	return clamp01(stddev / reference)
}

// brightnessScore rewards mean intensity near mid-gray and penalizes
// blown-out or underexposed scans.
func brightnessScore(g *image.Gray) float64 {
	mean, _ := grayStats(g)
	return clamp01(1 - math.Abs(mean-127.5)/127.5)
}

// noiseScore estimates noise as the mean absolute difference between
// each pixel and its horizontal neighbor. Low difference means low
// noise and a high score.
func noiseScore(g *image.Gray) float64 {
	const reference = 24.0

	bounds := g.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 2 || h < 1 {
		return 0
	}

	var sum float64
	var n int
	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			a := float64(g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			b := float64(g.GrayAt(bounds.Min.X+x+1, bounds.Min.Y+y).Y)
			sum += math.Abs(a - b)
			n++
		}
	}

	return clamp01(1 - (sum/float64(n))/reference)
}

// resolutionScore scales with pixel count, saturating at 2 megapixels
// which is ample for OCR of an A4 page.
func resolutionScore(bounds image.Rectangle) float64 {
	const reference = 2_000_000.0
	pixels := float64(bounds.Dx() * bounds.Dy())
	return clamp01(pixels / reference)
}

func grayStats(g *image.Gray) (mean, stddev float64) {
	bounds := g.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0, 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(g.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}

	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
