package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoIDStableAndSixteenHex(t *testing.T) {
	id1 := RepoID("/home/user/project")
	id2 := RepoID("/home/user/project")
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 16)

	id3 := RepoID("/home/user/other")
	assert.NotEqual(t, id1, id3)
}

func TestForRepoLayout(t *testing.T) {
	l := ForRepo("/base", "/repo")
	assert.Equal(t, "/base/indexes/"+l.RepoID, l.IndexDir)
	assert.Equal(t, "/base/indexes/"+l.RepoID+"/chunks.db", l.ChunksDBPath)
	assert.Equal(t, "/base/indexes/"+l.RepoID+"/vectors.hnsw", l.VectorPath)
	assert.Equal(t, "/base/merkle/"+l.RepoID+".json", l.MerklePath)
	assert.Equal(t, "/base/snapshots/snapshot.json", l.SnapshotPath)
}
