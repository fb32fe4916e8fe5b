package chunk

import (
	"context"
	"sort"
)

// ASTChunker splits a source file into semantic chunks using a
// tree-sitter grammar, falling back to the text chunker when no
// grammar is registered or parsing fails. See spec.md §4.3.
type ASTChunker struct {
	parser *Parser
	opts   Options
}

// NewASTChunker creates an ASTChunker with the given size bounds.
func NewASTChunker(opts Options) *ASTChunker {
	return &ASTChunker{parser: NewParser(), opts: opts}
}

// Close releases the underlying tree-sitter parser.
func (c *ASTChunker) Close() {
	c.parser.Close()
}

// Chunk splits source into chunks for path, written in language.
func (c *ASTChunker) Chunk(ctx context.Context, path string, source []byte, language string) ([]Chunk, error) {
	tree, supported, err := c.parser.Parse(ctx, source, language)
	if err != nil {
		return chunkText(path, source, language, c.opts), nil
	}
	if !supported {
		return chunkText(path, source, language, c.opts), nil
	}

	def, _ := grammarFor(language)
	var nodes []*Node
	tree.Root.Walk(func(n *Node) bool {
		if n == tree.Root {
			return true
		}
		if _, interesting := def.nodeTypes[n.Type]; interesting {
			nodes = append(nodes, n)
		}
		// Always descend: a method nested inside a class must still be
		// discovered and chunked on its own (spec.md §4.3's "nested
		// semantic nodes produce separate chunks" rule), even though the
		// outer node's own chunk content still contains it.
		return true
	})

	if len(nodes) == 0 {
		return chunkText(path, source, language, c.opts), nil
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].StartByte < nodes[j].StartByte })

	var out []Chunk
	covered := make([]bool, len(source))

	for _, n := range nodes {
		chunkType := def.nodeTypes[n.Type]
		content := n.GetContent(source)
		if content == "" {
			continue
		}
		if len(content) > c.opts.MaxChunkSize {
			// A single atomic node that exceeds the max is kept whole.
			out = append(out, Chunk{
				Path:      path,
				Content:   content,
				StartLine: int(n.StartPoint.Row) + 1,
				EndLine:   int(n.EndPoint.Row) + 1,
				Language:  language,
				ChunkType: chunkType,
			})
		} else if len(content) >= c.opts.MinChunkSize {
			out = append(out, Chunk{
				Path:      path,
				Content:   content,
				StartLine: int(n.StartPoint.Row) + 1,
				EndLine:   int(n.EndPoint.Row) + 1,
				Language:  language,
				ChunkType: chunkType,
			})
		} else {
			// Nodes smaller than MinChunkSize are absorbed into the
			// module-level coverage pass below instead of emitted alone.
			continue
		}
		for b := n.StartByte; b < n.EndByte && int(b) < len(covered); b++ {
			covered[b] = true
		}
	}

	out = append(out, moduleChunks(path, source, language, covered, c.opts)...)

	sort.Slice(out, func(i, j int) bool { return out[i].StartLine < out[j].StartLine })
	return attachTokenCounts(out), nil
}

// moduleChunks emits spec.md's "module" chunks for any contiguous
// uncovered byte range of at least MinChunkSize characters (top-level
// statements, imports, small decls absorbed above).
func moduleChunks(path string, source []byte, language string, covered []bool, opts Options) []Chunk {
	var out []Chunk
	n := len(source)
	i := 0
	for i < n {
		if covered[i] {
			i++
			continue
		}
		start := i
		for i < n && !covered[i] {
			i++
		}
		region := source[start:i]
		if len(region) >= opts.MinChunkSize {
			out = append(out, Chunk{
				Path:      path,
				Content:   string(region),
				StartLine: lineAt(source, start),
				EndLine:   lineAt(source, i-1),
				Language:  language,
				ChunkType: TypeModule,
			})
		}
	}
	return out
}

func lineAt(source []byte, byteOffset int) int {
	line := 1
	for i := 0; i < byteOffset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
