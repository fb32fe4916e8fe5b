package vectorindex

import (
	"context"
	"math"
	"sync"

	"github.com/coder/hnsw"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// Index is the HNSW-backed vector index. Keys are chunk ids (int64), so
// unlike the teacher's string-id vector store this needs no id<->key
// translation table.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[int64]
	cfg     Config
	vectors map[int64][]float32 // retained for compaction rebuilds
	deleted map[int64]struct{}
	closed  bool
}

// New creates an empty index with the given configuration. Zero-valued
// fields in cfg are replaced with spec.md §4.6's defaults.
func New(cfg Config) *Index {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfConstruction == 0 {
		cfg.EfConstruction = 200
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 100
	}
	if cfg.InitialCapacity == 0 {
		cfg.InitialCapacity = 1024
	}

	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 1 / math.Log(float64(cfg.M))

	return &Index{
		graph:   graph,
		cfg:     cfg,
		vectors: make(map[int64][]float32, cfg.InitialCapacity),
		deleted: make(map[int64]struct{}),
	}
}

// Add inserts or replaces the vector for id.
func (idx *Index) Add(ctx context.Context, id int64, vector []float32) error {
	return idx.AddBatch(ctx, []int64{id}, [][]float32{vector})
}

// AddBatch inserts or replaces vectors for multiple ids in one call.
func (idx *Index) AddBatch(ctx context.Context, ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return codiierrors.ValidationError("ids and vectors length mismatch", nil)
	}
	if len(ids) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return codiierrors.InternalError("vector index is closed", nil)
	}

	for _, v := range vectors {
		if len(v) != idx.cfg.Dimensions {
			return codiierrors.DimensionError(idx.cfg.Dimensions, len(v))
		}
	}

	for i, id := range ids {
		vec := normalize(vectors[i])
		// Replacing an id: the old graph node becomes orphaned rather than
		// removed, since coder/hnsw's Delete corrupts the graph when the
		// removed node is the last one added.
		delete(idx.deleted, id)
		idx.vectors[id] = vec
		idx.graph.Add(hnsw.MakeNode(id, vec))
	}
	return nil
}

// MarkDeleted logically removes id; it will never again be returned by
// Search. The underlying graph node is not physically removed until the
// next internal compaction.
func (idx *Index) MarkDeleted(ctx context.Context, id int64) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return codiierrors.InternalError("vector index is closed", nil)
	}
	if _, ok := idx.vectors[id]; !ok {
		return nil
	}
	idx.deleted[id] = struct{}{}
	delete(idx.vectors, id)

	if idx.shouldCompactLocked() {
		idx.compactLocked()
	}
	return nil
}

// Contains reports whether id is present and not soft-deleted.
func (idx *Index) Contains(id int64) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.vectors[id]
	return ok
}

// Count returns the number of live (non-deleted) vectors.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Search returns up to k non-deleted ids ordered by descending cosine
// similarity to query.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return nil, codiierrors.InternalError("vector index is closed", nil)
	}
	if len(query) != idx.cfg.Dimensions {
		return nil, codiierrors.DimensionError(idx.cfg.Dimensions, len(query))
	}
	if idx.graph.Len() == 0 || k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	// Over-fetch past k to absorb orphaned (soft-deleted) graph nodes that
	// coder/hnsw still returns until the next compaction.
	fetch := k + len(idx.deleted)
	if fetch < k {
		fetch = k
	}
	nodes := idx.graph.Search(q, fetch)

	results := make([]Result, 0, k)
	for _, n := range nodes {
		if _, dead := idx.deleted[n.Key]; dead {
			continue
		}
		if _, live := idx.vectors[n.Key]; !live {
			continue
		}
		dist := idx.graph.Distance(q, n.Value)
		// CosineDistance is 1 - cos, so this recovers the cosine similarity.
		results = append(results, Result{ID: n.Key, Similarity: 1 - dist})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Close releases the index. It does not persist anything; call Save first.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closed = true
	idx.graph = nil
	idx.vectors = nil
	idx.deleted = nil
	return nil
}

func (idx *Index) shouldCompactLocked() bool {
	total := len(idx.vectors) + len(idx.deleted)
	if total == 0 {
		return false
	}
	return float64(len(idx.deleted))/float64(total) > compactionThreshold
}

// compactLocked rebuilds the graph from only the live vectors, discarding
// orphaned nodes. Called with idx.mu already held.
func (idx *Index) compactLocked() {
	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = idx.cfg.M
	graph.EfSearch = idx.cfg.EfSearch
	graph.Ml = idx.graph.Ml

	for id, vec := range idx.vectors {
		graph.Add(hnsw.MakeNode(id, vec))
	}
	idx.graph = graph
	idx.deleted = make(map[int64]struct{})
}

func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	var sumSquares float64
	for _, x := range out {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return out
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range out {
		out[i] *= inv
	}
	return out
}
