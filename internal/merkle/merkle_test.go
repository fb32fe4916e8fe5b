package merkle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffClassifiesAddedModifiedRemoved(t *testing.T) {
	old := &Tree{Files: map[string]string{
		"a.go": "hash-a",
		"b.go": "hash-b",
		"c.go": "hash-c",
	}}
	next := &Tree{Files: map[string]string{
		"a.go": "hash-a",    // unchanged
		"b.go": "hash-b-v2", // modified
		"d.go": "hash-d",    // added
		// c.go removed
	}}

	added, modified, removed := Diff(old, next)
	assert.Equal(t, []string{"d.go"}, added)
	assert.Equal(t, []string{"b.go"}, modified)
	assert.Equal(t, []string{"c.go"}, removed)
}

func TestDiffEmptyWhenUnchanged(t *testing.T) {
	tree := &Tree{Files: map[string]string{"a.go": "x"}}
	added, modified, removed := Diff(tree, tree)
	assert.Empty(t, added)
	assert.Empty(t, modified)
	assert.Empty(t, removed)
}

func TestRootDeterministic(t *testing.T) {
	t1 := &Tree{Files: map[string]string{"b.go": "2", "a.go": "1"}}
	t2 := &Tree{Files: map[string]string{"a.go": "1", "b.go": "2"}}
	assert.Equal(t, t1.Root(), t2.Root())

	t3 := &Tree{Files: map[string]string{"a.go": "1", "b.go": "3"}}
	assert.NotEqual(t, t1.Root(), t3.Root())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merkle.json")

	tree := &Tree{Files: map[string]string{"a.go": "hash-a", "b.go": "hash-b"}}
	require.NoError(t, tree.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tree.Files, loaded.Files)
	assert.Equal(t, tree.Root(), loaded.Root())
}

func TestLoadMissingFileReturnsEmptyTree(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, loaded.Files)
}

func TestHashContent(t *testing.T) {
	h1 := HashContent([]byte("hello"))
	h2 := HashContent([]byte("hello"))
	h3 := HashContent([]byte("world"))
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
