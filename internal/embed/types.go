// Package embed adapts pluggable embedding backends behind one
// interface: an HTTP (Ollama-style) backend, a native in-process
// backend loaded via purego, and a deterministic stub used in tests
// and as a BM25-only fallback. See spec.md §3 and §4.4.
package embed

import (
	"context"
	"math"
)

// DefaultDimensions is the vector width codii indexes use unless a
// model reports otherwise. spec.md §3 fixes d at index creation time;
// 384 matches the default embedding model.
const DefaultDimensions = 384

const (
	MinBatchSize     = 1
	MaxBatchSize     = 256
	DefaultBatchSize = 32
)

// Embedder turns text into a fixed-width, L2-normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Available(ctx context.Context) bool
	Close() error
}

// normalizeVector scales v to unit length. A zero vector is returned
// unchanged (embedding an empty/whitespace-only chunk).
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
