package chunk

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is lazily initialized once per process: loading
// cl100k_base's merge ranks is a one-time cost shared by every chunker
// call (SPEC_FULL.md §4.3's token-count estimate).
var (
	tokenOnce     sync.Once
	tokenEncoding *tiktoken.Tiktoken
)

func getTokenEncoding() *tiktoken.Tiktoken {
	tokenOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenEncoding = enc
		}
	})
	return tokenEncoding
}

// countTokens estimates content's token count under cl100k_base. It
// never fails a chunking run: if the encoder could not be loaded (e.g.
// no network access to fetch its merge ranks on first use), TokenCount
// is left at 0 rather than blocking indexing on telemetry.
func countTokens(content string) int {
	enc := getTokenEncoding()
	if enc == nil {
		return 0
	}
	return len(enc.Encode(content, nil, nil))
}

// attachTokenCounts fills in TokenCount for each chunk, supplementing
// the character-based size bounds with an informational token estimate
// (spec.md's chunk size invariants remain character-based; this is
// additive telemetry only).
func attachTokenCounts(chunks []Chunk) []Chunk {
	for i := range chunks {
		chunks[i].TokenCount = countTokens(chunks[i].Content)
	}
	return chunks
}
