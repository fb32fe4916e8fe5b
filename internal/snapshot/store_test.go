package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)
	return s
}

func TestGetOnEmptyRegistryReturnsNotOk(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get("/repo/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertThenGetRoundTrips(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(CodebaseStatus{
		Path:         "/repo/a",
		Status:       StatusIndexed,
		Progress:     100,
		CurrentStage: StageComplete,
		MerkleRoot:   "deadbeef",
		IndexedFiles: 3,
		TotalChunks:  12,
	}))

	got, ok, err := s.Get("/repo/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusIndexed, got.Status)
	assert.Equal(t, "deadbeef", got.MerkleRoot)
	assert.NotEmpty(t, got.LastUpdated, "Upsert should stamp LastUpdated")
}

func TestUpsertOverwritesExistingEntry(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(CodebaseStatus{Path: "/repo/a", Status: StatusIndexing, Progress: 10}))
	require.NoError(t, s.Upsert(CodebaseStatus{Path: "/repo/a", Status: StatusIndexed, Progress: 100}))

	got, ok, err := s.Get("/repo/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusIndexed, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestRemoveDeletesEntry(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(CodebaseStatus{Path: "/repo/a", Status: StatusIndexed}))
	require.NoError(t, s.Remove("/repo/a"))

	_, ok, err := s.Get("/repo/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveOnMissingPathIsNoop(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Remove("/no/such/repo"))
}

func TestListReturnsAllEntriesSortedByPath(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(CodebaseStatus{Path: "/repo/b", Status: StatusIndexed}))
	require.NoError(t, s.Upsert(CodebaseStatus{Path: "/repo/a", Status: StatusIndexing}))

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/repo/a", all[0].Path)
	assert.Equal(t, "/repo/b", all[1].Path)
}

func TestOpenOnMissingFileStartsEmpty(t *testing.T) {
	s := openTestStore(t)
	all, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(CodebaseStatus{Path: "/repo/a", Status: StatusIndexed}))

	s2, err := Open(path)
	require.NoError(t, err)
	got, ok, err := s2.Get("/repo/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusIndexed, got.Status)
}
