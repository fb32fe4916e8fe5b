// Package chunk splits source files into retrievable units: AST-guided
// semantic chunks where a tree-sitter grammar is available, and a
// sliding-window text chunker otherwise. See spec.md §3 and §4.3.
package chunk

// Type enumerates the kinds of chunk a file can be split into.
type Type string

const (
	TypeFunction Type = "function"
	TypeClass    Type = "class"
	TypeMethod   Type = "method"
	TypeModule   Type = "module"
	TypeComment  Type = "comment"
	TypeText     Type = "text"
)

// Chunk is one retrievable unit of source, matching spec.md §3's chunk
// record. ID is assigned by the chunk store on insert, not here.
type Chunk struct {
	Path      string
	Content   string
	StartLine int
	EndLine   int
	Language  string
	ChunkType Type
	// TokenCount is an informational cl100k_base token estimate
	// (SPEC_FULL.md §4.3), supplementing but never replacing the
	// character-based size bounds above.
	TokenCount int
}

// Options bounds chunk sizes, expressed in characters per spec.md §4.3.
type Options struct {
	MinChunkSize int
	MaxChunkSize int
	ChunkOverlap int
}

// DefaultOptions matches spec.md's default chunking bounds.
func DefaultOptions() Options {
	return Options{
		MinChunkSize: 200,
		MaxChunkSize: 2000,
		ChunkOverlap: 200,
	}
}
