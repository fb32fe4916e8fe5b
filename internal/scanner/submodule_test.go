package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSubmodulesReturnsNilOutsideGit(t *testing.T) {
	root := t.TempDir()
	paths, err := listSubmodules(root)
	require.NoError(t, err)
	assert.Nil(t, paths)
}

// gitmodulesRepo initializes a real git repository at root with a single
// configured submodule at subPath, without actually cloning it: exactly
// what an extracted checkout with an uninitialized submodule looks like.
func gitmodulesRepo(t *testing.T, root, subPath string) {
	t.Helper()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	gitmodules := "[submodule \"" + subPath + "\"]\n" +
		"\tpath = " + subPath + "\n" +
		"\turl = https://example.com/" + subPath + ".git\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitmodules"), []byte(gitmodules), 0o644))
}

func TestListSubmodulesReadsGitmodules(t *testing.T) {
	root := t.TempDir()
	gitmodulesRepo(t, root, "vendor/lib")

	paths, err := listSubmodules(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/lib"}, paths)
}

func TestScanSkipsSubmodulesByDefault(t *testing.T) {
	root := t.TempDir()
	gitmodulesRepo(t, root, "vendor/lib")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "vendor/lib/dep.go", "package dep")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, paths(files))
}

func TestScanIncludesSubmodulesWhenOptedIn(t *testing.T) {
	root := t.TempDir()
	gitmodulesRepo(t, root, "vendor/lib")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "vendor/lib/dep.go", "package dep")

	s, err := New()
	require.NoError(t, err)
	files, err := s.Scan(Options{Root: root, Extensions: []string{".go"}, Submodules: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go", "vendor/lib/dep.go"}, paths(files))
}
