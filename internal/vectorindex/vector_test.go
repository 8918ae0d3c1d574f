package vectorindex_test

import (
	"errors"
	"math"
	"testing"

	"github.com/praval-labs/praval/internal/vectorindex"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical", []float32{0.5, 0.5, 0.5}, []float32{0.5, 0.5, 0.5}, 1},
		{"scaled copies", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero magnitude", []float32{0, 0, 0}, []float32{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vectorindex.Cosine(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Cosine() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := vectorindex.Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, vectorindex.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}
