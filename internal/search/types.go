// Package search implements the hybrid lexical+vector searcher described
// in spec.md §4.7: Reciprocal Rank Fusion over BM25 and cosine-similarity
// candidate lists, with an optional reranking pass.
package search

import "github.com/oOSomnus/codii/internal/chunk"

// Weights configures the relative contribution of the lexical and vector
// subsearches to the fused score. spec.md §4.7 defaults both to 0.5.
type Weights struct {
	Lexical float64
	Vector  float64
}

// DefaultWeights returns spec.md §4.7's w_L = w_V = 0.5.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.5, Vector: 0.5}
}

// Options configures a single hybrid search call.
type Options struct {
	// Limit is n, the number of results requested.
	Limit int
	// ExtensionFilter restricts results to these path extensions (e.g.
	// ".go"), applied lexically when non-empty.
	ExtensionFilter []string
	// Rerank enables the cross-encoder reranking pass (spec.md §4.7 step 7).
	Rerank bool
	// Weights overrides DefaultWeights when non-nil.
	Weights *Weights
}

// Result is one hybrid search hit, carrying both subsearch scores (as RRF
// contributions, per spec.md §4.7 step 8) and the combined score used for
// ranking.
type Result struct {
	ChunkID       int64
	Path          string
	Content       string
	Language      string
	ChunkType     chunk.Type
	StartLine     int
	EndLine       int
	BM25Score     float64
	VectorScore   float64
	CombinedScore float64
	Rank          int
}
