package search

import (
	"math"
	"sort"

	"github.com/oOSomnus/codii/internal/store"
	"github.com/oOSomnus/codii/internal/vectorindex"
)

// rrfK is spec.md §4.7's fixed RRF smoothing constant.
const rrfK = 60

// fused accumulates both subsearch ranks/scores for one chunk id before
// the final RRF score is computed.
type fused struct {
	chunkID     int64
	lexRank     int // 1-based; 0 means absent (rank treated as +Inf)
	lexScore    float64
	vecRank     int
	vecScore    float64
	combined    float64
}

// Fuse combines lexical and vector candidate lists with Reciprocal Rank
// Fusion, exactly as spec.md §4.7 steps 4-5 specify: `score = w_L/(k+r_L) +
// w_V/(k+r_V)` with k=60, ranks 1-based, a list a chunk is absent from
// contributing 0 (r treated as infinite), ties broken by lower lexical
// rank then lower chunk id. This is a different fusion than the teacher's
// own `fusion.go` (which penalizes absence with `max(len1,len2)+1` and
// breaks ties by in-both-lists then BM25 score then lexicographic id) —
// spec.md's formula is followed verbatim here instead.
func Fuse(lexHits []store.SearchHit, vecHits []vectorindex.Result, weights Weights) []fused {
	byID := make(map[int64]*fused, len(lexHits)+len(vecHits))

	get := func(id int64) *fused {
		if f, ok := byID[id]; ok {
			return f
		}
		f := &fused{chunkID: id}
		byID[id] = f
		return f
	}

	for i, h := range lexHits {
		f := get(h.ChunkID)
		f.lexRank = i + 1
		// Per-subsearch scores are kept as RRF contributions.
		f.lexScore = weights.Lexical / float64(rrfK+f.lexRank)
		f.combined += f.lexScore
	}
	for i, r := range vecHits {
		f := get(r.ID)
		f.vecRank = i + 1
		f.vecScore = weights.Vector / float64(rrfK+f.vecRank)
		f.combined += f.vecScore
	}

	out := make([]*fused, 0, len(byID))
	for _, f := range byID {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.combined != b.combined {
			return a.combined > b.combined
		}
		ra, rb := lexRankOrInf(a), lexRankOrInf(b)
		if ra != rb {
			return ra < rb
		}
		return a.chunkID < b.chunkID
	})

	results := make([]fused, len(out))
	for i, f := range out {
		results[i] = *f
	}
	return results
}

func lexRankOrInf(f *fused) float64 {
	if f.lexRank == 0 {
		return math.Inf(1)
	}
	return float64(f.lexRank)
}
