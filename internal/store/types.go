// Package store implements the chunk store: a sqlite-backed table of
// chunk records with an FTS5 external-content index kept current by
// triggers, queried for BM25-scored lexical search. See spec.md §3 and
// §4.5.
package store

import "github.com/oOSomnus/codii/internal/chunk"

// Record is a persisted chunk, with the id the store assigned on
// insert.
type Record struct {
	ID         int64
	Path       string
	Content    string
	StartLine  int
	EndLine    int
	Language   string
	ChunkType  chunk.Type
	TokenCount int
	CreatedAt  int64
}

// SearchHit is one lexical search result: the matched chunk id, its 1-based
// rank in BM25 order (best first), and its FTS5 bm25 score (higher is
// better, after sign-flip from sqlite's native "lower is better"
// convention).
type SearchHit struct {
	ChunkID int64
	Rank    int
	Score   float64
}
