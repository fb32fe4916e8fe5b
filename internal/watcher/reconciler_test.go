package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oOSomnus/codii/internal/embed"
	"github.com/oOSomnus/codii/internal/orchestrator"
	"github.com/oOSomnus/codii/internal/snapshot"
)

func newTestReconciler(t *testing.T, repoRoot string) (*Reconciler, *snapshot.Store) {
	t.Helper()
	baseDir := t.TempDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	require.NoError(t, err)
	orch := orchestrator.New(baseDir, embed.NewStaticEmbedder(), snap, nil)
	r := NewReconciler(orch, repoRoot, Options{DebounceWindow: 20 * time.Millisecond}, orchestrator.Options{})
	return r, snap
}

func TestReconcilerIndexesOnFileChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))

	r, snap := newTestReconciler(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(150 * time.Millisecond) // let the watcher attach before the edit
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package a\n\nfunc g() {}\n"), 0o644))

	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, ok, err := snap.Get(absRoot)
		return err == nil && ok && status.Status == snapshot.StatusIndexed
	}, 5*time.Second, 50*time.Millisecond, "reconciler never indexed the changed repo")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestReconcilerWatcherTypeReportsStrategy(t *testing.T) {
	root := t.TempDir()
	r, _ := newTestReconciler(t, root)
	assert.Contains(t, []string{"fsnotify", "polling"}, r.WatcherType())
}
