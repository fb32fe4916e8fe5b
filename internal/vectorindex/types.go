// Package vectorindex implements the approximate nearest-neighbor vector
// index described in spec.md §4.6: an HNSW graph over chunk id -> embedding,
// with soft-delete, save/load, and an internal (never-exposed) compaction
// trigger.
package vectorindex

import "fmt"

// Result is one vector search hit: a chunk id and its cosine similarity to
// the query vector (higher is more similar).
type Result struct {
	ID         int64
	Similarity float32
}

// Config configures a new Index. Zero values are replaced by spec.md §4.6's
// defaults in New.
type Config struct {
	Dimensions     int
	M              int
	EfConstruction int
	EfSearch       int
	// InitialCapacity is the initial capacity of the index's live-vector
	// map; it is advisory only. The coder/hnsw graph grows on demand.
	InitialCapacity int
}

// DefaultConfig returns spec.md §4.6's graph parameters for the given
// embedding dimensionality.
func DefaultConfig(dimensions int) Config {
	return Config{
		Dimensions:      dimensions,
		M:               16,
		EfConstruction:  200,
		EfSearch:        100,
		InitialCapacity: 1024,
	}
}

// DimensionError reports a vector whose length does not match the index's
// configured dimensionality.
type DimensionError struct {
	Expected int
	Got      int
}

func (e DimensionError) Error() string {
	return fmt.Sprintf("vector index: expected %d dimensions, got %d", e.Expected, e.Got)
}

// compactionThreshold is the soft-deleted fraction past which a rebuild is
// triggered internally; never exposed to callers (spec.md §4.6).
const compactionThreshold = 0.5
