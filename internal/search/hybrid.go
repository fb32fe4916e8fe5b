package search

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/oOSomnus/codii/internal/embed"
	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/query"
	"github.com/oOSomnus/codii/internal/store"
	"github.com/oOSomnus/codii/internal/vectorindex"
)

// minCandidates is the floor on N_L/N_V from spec.md §4.7 steps 2-3:
// `N = max(n*5, 50)`.
const minCandidates = 50

// candidateMultiplier is the `5` in `n*5`.
const candidateMultiplier = 5

// rerankPoolMultiplier and rerankPoolCap implement spec.md §4.7 step 7's
// `min(n*3, 30)` reranking pool size.
const (
	rerankPoolMultiplier = 3
	rerankPoolCap        = 30
)

// lexicalSearcher is the subset of *store.ChunkStore the hybrid searcher
// needs; narrowed to an interface so tests can fake it.
type lexicalSearcher interface {
	SearchFTS(ctx context.Context, matchExpr string, limit int, extensionFilter []string) ([]store.SearchHit, error)
	GetByIDs(ctx context.Context, ids []int64) ([]store.Record, error)
}

// vectorSearcher is the subset of *vectorindex.Index the hybrid searcher
// needs.
type vectorSearcher interface {
	Search(ctx context.Context, query []float32, k int) ([]vectorindex.Result, error)
}

// Searcher implements spec.md §4.7's hybrid search over a chunk store and
// a vector index.
type Searcher struct {
	chunks   lexicalSearcher
	vectors  vectorSearcher
	embedder embed.Embedder
	reranker Reranker
}

// New builds a Searcher. reranker may be nil, in which case a NoOpReranker
// is used.
func New(chunks lexicalSearcher, vectors vectorSearcher, embedder embed.Embedder, reranker Reranker) *Searcher {
	if reranker == nil {
		reranker = NoOpReranker{}
	}
	return &Searcher{chunks: chunks, vectors: vectors, embedder: embedder, reranker: reranker}
}

// Search runs spec.md §4.7's full pipeline: process the query, run the
// lexical and vector subsearches concurrently, fuse with RRF, fetch chunk
// rows, optionally rerank, and return up to opts.Limit results.
func (s *Searcher) Search(ctx context.Context, q string, opts Options) ([]Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, codiierrors.ValidationError("query must not be empty", nil)
	}
	n := opts.Limit
	if n <= 0 {
		n = 10
	}
	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	processed, err := query.Process(q)
	if err != nil {
		return nil, err
	}
	candidateCount := n * candidateMultiplier
	if candidateCount < minCandidates {
		candidateCount = minCandidates
	}

	var lexHits []store.SearchHit
	var vecHits []vectorindex.Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := s.chunks.SearchFTS(gctx, processed.Expression, candidateCount, opts.ExtensionFilter)
		if err != nil {
			return err
		}
		lexHits = hits
		return nil
	})
	g.Go(func() error {
		if !s.embedder.Available(gctx) {
			return nil
		}
		vec, err := s.embedder.Embed(gctx, q)
		if err != nil {
			return err
		}
		hits, err := s.vectors.Search(gctx, vec, candidateCount)
		if err != nil {
			return err
		}
		vecHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fusedResults := Fuse(lexHits, vecHits, weights)

	fetchCount := n
	if opts.Rerank {
		fetchCount = rerankPoolMultiplier * n
		if fetchCount > rerankPoolCap {
			fetchCount = rerankPoolCap
		}
	}
	if fetchCount > len(fusedResults) {
		fetchCount = len(fusedResults)
	}
	top := fusedResults[:fetchCount]

	ids := make([]int64, len(top))
	for i, f := range top {
		ids[i] = f.chunkID
	}
	records, err := s.chunks.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	recordByID := make(map[int64]store.Record, len(records))
	for _, r := range records {
		recordByID[r.ID] = r
	}

	results := make([]Result, 0, len(top))
	for _, f := range top {
		r, ok := recordByID[f.chunkID]
		if !ok {
			continue
		}
		if len(opts.ExtensionFilter) > 0 && !extensionAllowed(r.Path, opts.ExtensionFilter) {
			continue
		}
		results = append(results, Result{
			ChunkID:       f.chunkID,
			Path:          r.Path,
			Content:       r.Content,
			Language:      r.Language,
			ChunkType:     r.ChunkType,
			StartLine:     r.StartLine,
			EndLine:       r.EndLine,
			BM25Score:     f.lexScore,
			VectorScore:   f.vecScore,
			CombinedScore: f.combined,
		})
	}

	if opts.Rerank && s.reranker.Available(ctx) && len(results) > 0 {
		results, err = s.rerank(ctx, q, results)
		if err != nil {
			return nil, err
		}
	}

	if len(results) > n {
		results = results[:n]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

func (s *Searcher) rerank(ctx context.Context, q string, results []Result) ([]Result, error) {
	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Content
	}
	scored, err := s.reranker.Rerank(ctx, q, docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	out := make([]Result, len(scored))
	for i, sc := range scored {
		r := results[sc.Index]
		r.CombinedScore = sc.Score
		out[i] = r
	}
	return out, nil
}

func extensionAllowed(path string, filter []string) bool {
	ext := filepath.Ext(path)
	for _, f := range filter {
		if f == ext {
			return true
		}
	}
	return false
}
