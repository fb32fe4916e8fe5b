// Package paths resolves codii's on-disk storage layout for a given
// repository: <base_dir>/indexes/<hash>/, merkle/<hash>.json,
// snapshots/snapshot.json. See spec.md §3 and §6.
package paths

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// BaseDir returns CODII_BASE_DIR if set, else ~/.codii.
func BaseDir() string {
	if dir := os.Getenv("CODII_BASE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codii"
	}
	return filepath.Join(home, ".codii")
}

// RepoID derives the stable short identifier for a repository: the
// first 16 hex characters of SHA-256(absolute canonical path).
func RepoID(absRepoPath string) string {
	sum := sha256.Sum256([]byte(absRepoPath))
	return hex.EncodeToString(sum[:])[:16]
}

// Layout is the set of on-disk paths owned by one repository.
type Layout struct {
	RepoID       string
	IndexDir     string // <base>/indexes/<hash>/
	ChunksDBPath string // <base>/indexes/<hash>/chunks.db
	VectorPath   string // <base>/indexes/<hash>/vectors.hnsw
	MerklePath   string // <base>/merkle/<hash>.json
	SnapshotPath string // <base>/snapshots/snapshot.json
}

// ForRepo computes the storage layout for absRepoPath under baseDir.
func ForRepo(baseDir, absRepoPath string) Layout {
	id := RepoID(absRepoPath)
	indexDir := filepath.Join(baseDir, "indexes", id)
	return Layout{
		RepoID:       id,
		IndexDir:     indexDir,
		ChunksDBPath: filepath.Join(indexDir, "chunks.db"),
		VectorPath:   filepath.Join(indexDir, "vectors.hnsw"),
		MerklePath:   filepath.Join(baseDir, "merkle", id+".json"),
		SnapshotPath: filepath.Join(baseDir, "snapshots", "snapshot.json"),
	}
}

// EnsureDirs creates every directory the layout needs.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{
		l.IndexDir,
		filepath.Dir(l.MerklePath),
		filepath.Dir(l.SnapshotPath),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
