package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestScanAppliesExtensionAllowList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "readme.md", "# hi")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "ignored.go\n")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "ignored.go", "package main")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanPrunesIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "vendor/dep.go", "package dep")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	require.NoError(t, os.WriteFile(filepath.Join(root, "blob.go"), []byte("abc\x00def"), 0o644))

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanWithNoExtensionsIncludesAllNonBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "README.md", "# hi")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go", "README.md"}, paths(files))
}

func TestScanUserIgnorePatternsAppliedOnTopOfDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "generated.go", "package main")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{
		Root:           root,
		Extensions:     []string{".go"},
		IgnorePatterns: []string{"generated.go"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanSkipsSymlinkOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "secret.go", "package secret")
	writeFile(t, root, "main.go", "package main")

	err := os.Symlink(filepath.Join(outside, "secret.go"), filepath.Join(root, "link.go"))
	if err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}
