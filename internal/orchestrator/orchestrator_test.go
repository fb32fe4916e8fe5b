package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oOSomnus/codii/internal/embed"
	"github.com/oOSomnus/codii/internal/snapshot"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *snapshot.Store) {
	t.Helper()
	baseDir := t.TempDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	require.NoError(t, err)
	return New(baseDir, embed.NewStaticEmbedder(), snap, nil), snap
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestIndexFreshRepoAcceptsAndIndexesChunks(t *testing.T) {
	o, snap := newTestOrchestrator(t)
	root := writeRepo(t, map[string]string{
		"a.go": "package a\n\nfunc foo() int {\n\treturn 1\n}\n",
	})

	result, run, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Accepted, result)
	require.NoError(t, run.Wait())

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	status, ok, err := snap.Get(absRoot)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot.StatusIndexed, status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 1, status.IndexedFiles)
	assert.Greater(t, status.TotalChunks, 0)
}

func TestIndexUnchangedRepoReturnsNoChanges(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	root := writeRepo(t, map[string]string{"a.go": "package a\n"})

	_, run, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	result, run2, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, NoChanges, result)
	require.NoError(t, run2.Wait())
}

func TestIndexOnInvalidPathErrors(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	_, _, err := o.Index(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	assert.Error(t, err)
}

func TestIndexIncrementalModifyReindexesChangedFile(t *testing.T) {
	o, snap := newTestOrchestrator(t)
	root := writeRepo(t, map[string]string{"a.go": "package a\n\nfunc foo() int {\n\treturn 1\n}\n"})

	_, run, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nfunc foo() int {\n\treturn 2\n}\n"), 0o644))

	result, run2, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Accepted, result)
	require.NoError(t, run2.Wait())

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	status, ok, err := snap.Get(absRoot)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot.StatusIndexed, status.Status)
}

func TestIndexForceClearsPriorState(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	root := writeRepo(t, map[string]string{"a.go": "package a\n\nfunc foo() int { return 1 }\n"})

	_, run, err := o.Index(context.Background(), root, Options{})
	require.NoError(t, err)
	require.NoError(t, run.Wait())

	result, run2, err := o.Index(context.Background(), root, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, Accepted, result, "a forced run must reindex even with no file changes")
	require.NoError(t, run2.Wait())
}

func TestIndexCancelledContextMarksFailedCancelled(t *testing.T) {
	o, snap := newTestOrchestrator(t)
	root := writeRepo(t, map[string]string{"a.go": "package a\n\nfunc foo() int { return 1 }\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, run, err := o.Index(ctx, root, Options{})
	require.NoError(t, err)
	assert.Equal(t, Accepted, result)
	waitErr := run.Wait()
	assert.Error(t, waitErr)

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	status, ok, err := snap.Get(absRoot)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snapshot.StatusFailed, status.Status)
	assert.Equal(t, "cancelled", status.ErrorMessage)
}
