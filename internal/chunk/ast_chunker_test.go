package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASTChunkerExtractsGoFunctions(t *testing.T) {
	src := []byte(`package main

func Add(a, b int) int {
	return a + b
}

func Sub(a, b int) int {
	return a - b
}
`)
	c := NewASTChunker(Options{MinChunkSize: 1, MaxChunkSize: 10000, ChunkOverlap: 0})
	defer c.Close()

	chunks, err := c.Chunk(context.Background(), "math.go", src, "go")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	var funcChunks int
	for _, ch := range chunks {
		if ch.ChunkType == TypeFunction {
			funcChunks++
			assert.Equal(t, "math.go", ch.Path)
			assert.Equal(t, "go", ch.Language)
			assert.True(t, ch.EndLine >= ch.StartLine)
		}
	}
	assert.Equal(t, 2, funcChunks)
}

func TestASTChunkerKeepsOversizedNodeWhole(t *testing.T) {
	body := strings.Repeat("\tx := 1\n", 200)
	src := []byte("package main\n\nfunc Big() {\n" + body + "}\n")

	c := NewASTChunker(Options{MinChunkSize: 1, MaxChunkSize: 10, ChunkOverlap: 0})
	defer c.Close()

	chunks, err := c.Chunk(context.Background(), "big.go", src, "go")
	require.NoError(t, err)

	found := false
	for _, ch := range chunks {
		if ch.ChunkType == TypeFunction && len(ch.Content) > 10 {
			found = true
		}
	}
	assert.True(t, found, "oversized function node should be kept whole, not dropped or split")
}

func TestASTChunkerEmitsNestedMethodAsSeparateChunk(t *testing.T) {
	src := []byte(`class Greeter:
    def greet(self, name):
        return "hello " + name

    def farewell(self, name):
        return "bye " + name
`)
	c := NewASTChunker(Options{MinChunkSize: 1, MaxChunkSize: 10000, ChunkOverlap: 0})
	defer c.Close()

	chunks, err := c.Chunk(context.Background(), "greeter.py", src, "python")
	require.NoError(t, err)

	var classChunks, methodChunks int
	var classContent string
	for _, ch := range chunks {
		switch ch.ChunkType {
		case TypeClass:
			classChunks++
			classContent = ch.Content
		case TypeFunction:
			methodChunks++
		}
	}

	assert.Equal(t, 1, classChunks, "the class itself should still produce one chunk")
	assert.Equal(t, 2, methodChunks, "each nested method must be discovered and chunked separately")
	assert.Contains(t, classContent, "def greet", "the outer class chunk still contains the nested method text")
	assert.Contains(t, classContent, "def farewell")
}

func TestASTChunkerFallsBackToTextForUnknownLanguage(t *testing.T) {
	src := []byte("line one\nline two\nline three\n")
	c := NewASTChunker(DefaultOptions())
	defer c.Close()

	chunks, err := c.Chunk(context.Background(), "notes.txt", src, "")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, TypeText, chunks[0].ChunkType)
}
