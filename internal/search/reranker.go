package search

import "context"

// RerankResult is one reranked candidate, identified by its position in
// the slice handed to Rerank.
type RerankResult struct {
	Index int
	Score float64
}

// Reranker is the external collaborator spec.md §1 names as
// `(query, text)[] -> score[]`: a cross-encoder that jointly scores a
// query against candidate chunk text, used in spec.md §4.7 step 7.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankResult, error)
	Available(ctx context.Context) bool
}

// NoOpReranker preserves input order, used when no cross-encoder is
// configured or available.
type NoOpReranker struct{}

func (NoOpReranker) Rerank(_ context.Context, _ string, documents []string) ([]RerankResult, error) {
	out := make([]RerankResult, len(documents))
	for i := range documents {
		out[i] = RerankResult{Index: i, Score: 1 - float64(i)*0.001}
	}
	return out, nil
}

func (NoOpReranker) Available(_ context.Context) bool { return true }

var _ Reranker = NoOpReranker{}
