// Package trigger scans embedded documents for configured risk
// categories. Each category is defined by trigger phrases; the mean of
// the phrase embeddings forms a category centroid, and chunks whose
// cosine similarity to a centroid meets the category threshold raise
// notifications.
package trigger

import (
	"errors"
)

// Category is one configured trigger definition.
type Category struct {
	Name       string   `toml:"name"`
	Phrases    []string `toml:"phrases"`
	Threshold  float64  `toml:"threshold"`
	Priority   string   `toml:"priority"`
	Recipients []string `toml:"recipients"`
}

// Config holds trigger scanning settings.
type Config struct {
	Categories []Category `toml:"categories"`
	CacheTTL   string     `toml:"cache_ttl"`
}

var (
	ErrNoCategories = errors.New("no trigger categories configured")
	ErrStaleCache   = errors.New("trigger cache could not be refreshed")
)

// centroid is a category with its cached phrase-embedding mean.
type centroid struct {
	category Category
	vector   []float32
}

// meanVector averages a set of equal-length vectors.
func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i := range mean {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}
	return mean
}
