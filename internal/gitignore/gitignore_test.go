package gitignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPatternMatchesAnyDepth(t *testing.T) {
	m := New()
	m.AddPattern("*.log")

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("nested/dir/debug.log", false))
	assert.False(t, m.Match("debug.txt", false))
}

func TestAnchoredPatternMatchesOnlyAtRoot(t *testing.T) {
	m := New()
	m.AddPattern("/build")

	assert.True(t, m.Match("build", true))
	assert.False(t, m.Match("nested/build", true))
}

func TestDirOnlyPatternDoesNotMatchFiles(t *testing.T) {
	m := New()
	m.AddPattern("vendor/")

	assert.True(t, m.Match("vendor", true))
	assert.False(t, m.Match("vendor", false))
}

func TestNegationUnignores(t *testing.T) {
	m := New()
	m.AddPattern("*.log")
	m.AddPattern("!important.log")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("important.log", false))
}

func TestGlobstarMatchesAnyNumberOfSegments(t *testing.T) {
	m := New()
	m.AddPattern("**/node_modules")

	assert.True(t, m.Match("node_modules", true))
	assert.True(t, m.Match("a/b/c/node_modules", true))
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	m := New()
	err := m.LoadFile(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.True(t, m.Empty())
}

func TestLoadFileParsesCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\n*.tmp\n"), 0o644))

	m := New()
	require.NoError(t, m.LoadFile(path))
	assert.True(t, m.Match("scratch.tmp", false))
}
