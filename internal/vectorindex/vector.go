// Package vectorindex stores chunk embeddings and performs similarity
// queries over them. Vectors are persisted as little-endian float32 byte
// strings and ranked in process with cosine similarity.
package vectorindex

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

// ErrDimensionMismatch indicates two vectors of unequal length were compared.
var ErrDimensionMismatch = errors.New("vector dimensions do not match")

// Entry is a stored embedding for a single chunk.
type Entry struct {
	ChunkID      string    `json:"chunk_id"`
	DocumentID   uuid.UUID `json:"document_id"`
	ModelVersion string    `json:"model_version"`
	Vector       []float32 `json:"-"`
}

// Match pairs a stored entry with its similarity score against a query vector.
type Match struct {
	ChunkID    string    `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Score      float64   `json:"score"`
}

// Cosine computes the cosine similarity between two vectors.
// Returns 0 when either vector has zero magnitude.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// encodeVector packs a float32 slice into little-endian bytes for storage.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks little-endian bytes back into a float32 slice.
func decodeVector(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
