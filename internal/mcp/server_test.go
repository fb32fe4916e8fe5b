package mcp

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

func newTestServer(t *testing.T) (*Server, *snapshot.Store, string) {
	t.Helper()
	baseDir := t.TempDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	require.NoError(t, err)
	orch := orchestrator.New(baseDir, embed.NewStaticEmbedder(), snap, nil)
	s := NewServer(baseDir, orch, snap, embed.NewStaticEmbedder())
	return s, snap, baseDir
}

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.go"), []byte("package main\n\nfunc helper() int { return 42 }\n"), 0o644))
	return root
}

func indexAndWait(t *testing.T, s *Server, repoPath string) {
	t.Helper()
	_, out, err := s.handleIndexCodebase(context.Background(), nil, IndexCodebaseInput{RepoPath: repoPath})
	require.NoError(t, err)
	require.Equal(t, "accepted", out.Result)

	absPath, err := filepath.Abs(repoPath)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		status, ok, err := s.snap.Get(absPath)
		return err == nil && ok && status.Status == snapshot.StatusIndexed
	}, 5*time.Second, 50*time.Millisecond, "index never completed")
}

func TestIndexCodebaseAcceptsNewRepo(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)
}

func TestIndexCodebaseRejectsEmptyPath(t *testing.T) {
	s, _, _ := newTestServer(t)
	_, _, err := s.handleIndexCodebase(context.Background(), nil, IndexCodebaseInput{})
	require.Error(t, err)
	mcpErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestIndexCodebaseReportsNoChangesOnSecondCall(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)

	_, out, err := s.handleIndexCodebase(context.Background(), nil, IndexCodebaseInput{RepoPath: root})
	require.NoError(t, err)
	assert.Equal(t, "no_changes", out.Result)
}

func TestSearchCodeReturnsResultsAfterIndexing(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)

	_, out, err := s.handleSearchCode(context.Background(), nil, SearchCodeInput{RepoPath: root, Query: "helper"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Results)
}

func TestSearchCodeRejectsUnindexedRepo(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)

	_, _, err := s.handleSearchCode(context.Background(), nil, SearchCodeInput{RepoPath: root, Query: "anything"})
	require.Error(t, err)
	mcpErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotIndexed, mcpErr.Code)
}

func TestSearchCodeRejectsEmptyQuery(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)

	_, _, err := s.handleSearchCode(context.Background(), nil, SearchCodeInput{RepoPath: root, Query: ""})
	require.Error(t, err)
	mcpErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidQuery, mcpErr.Code)
}

func TestGetIndexingStatusReturnsNotFoundForUnknownRepo(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)

	_, out, err := s.handleGetIndexingStatus(context.Background(), nil, GetIndexingStatusInput{RepoPath: root})
	require.NoError(t, err)
	require.Len(t, out.Repositories, 1)
	assert.Equal(t, "not_found", out.Repositories[0].Status)
}

func TestGetIndexingStatusListsAllRepositories(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)

	_, out, err := s.handleGetIndexingStatus(context.Background(), nil, GetIndexingStatusInput{})
	require.NoError(t, err)
	require.Len(t, out.Repositories, 1)
	assert.Equal(t, "indexed", out.Repositories[0].Status)
}

func TestClearIndexRemovesIndexAndStatus(t *testing.T) {
	s, snap, _ := newTestServer(t)
	root := writeTestRepo(t)
	indexAndWait(t, s, root)

	_, out, err := s.handleClearIndex(context.Background(), nil, ClearIndexInput{RepoPath: root})
	require.NoError(t, err)
	assert.True(t, out.Cleared)

	absPath, err := filepath.Abs(root)
	require.NoError(t, err)
	_, found, err := snap.Get(absPath)
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = s.handleSearchCode(context.Background(), nil, SearchCodeInput{RepoPath: root, Query: "helper"})
	require.Error(t, err)
}

func TestClearIndexOnNeverIndexedRepoReportsNotCleared(t *testing.T) {
	s, _, _ := newTestServer(t)
	root := writeTestRepo(t)

	_, out, err := s.handleClearIndex(context.Background(), nil, ClearIndexInput{RepoPath: root})
	require.NoError(t, err)
	assert.False(t, out.Cleared)
}
