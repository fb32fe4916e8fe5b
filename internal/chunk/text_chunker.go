package chunk

import "strings"

// chunkText is the sliding-window fallback chunker: used for
// unsupported languages, parse failures, and files in which the AST
// pass finds no semantic node. See spec.md §4.3.
func chunkText(path string, source []byte, language string, opts Options) []Chunk {
	lines := strings.Split(string(source), "\n")
	if len(lines) == 0 {
		return nil
	}

	var out []Chunk
	lineStart := 0 // 0-based index into lines

	for lineStart < len(lines) {
		end := lineStart
		size := 0
		for end < len(lines) {
			lineLen := len(lines[end]) + 1 // +1 for the newline
			if size+lineLen > opts.MaxChunkSize && end > lineStart {
				break
			}
			size += lineLen
			end++
		}

		content := strings.Join(lines[lineStart:end], "\n")
		out = append(out, Chunk{
			Path:      path,
			Content:   content,
			StartLine: lineStart + 1,
			EndLine:   end,
			Language:  language,
			ChunkType: TypeText,
		})

		if end >= len(lines) {
			break
		}

		// Start the next chunk so the last chunk_overlap characters of
		// this one are repeated, breaking on a line boundary.
		overlapLines := 0
		overlapSize := 0
		for i := end - 1; i >= lineStart && overlapSize < opts.ChunkOverlap; i-- {
			overlapSize += len(lines[i]) + 1
			overlapLines++
		}
		next := end - overlapLines
		if next <= lineStart {
			next = end
		}
		lineStart = next
	}

	return attachTokenCounts(mergeFinalIfTooSmall(out, opts))
}

// mergeFinalIfTooSmall folds the last chunk into its predecessor when
// it falls below MinChunkSize, per spec.md §4.3.
func mergeFinalIfTooSmall(chunks []Chunk, opts Options) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	last := chunks[len(chunks)-1]
	if len(last.Content) >= opts.MinChunkSize {
		return chunks
	}
	prev := &chunks[len(chunks)-2]
	prev.Content = prev.Content + "\n" + last.Content
	prev.EndLine = last.EndLine
	return chunks[:len(chunks)-1]
}
