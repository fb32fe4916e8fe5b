package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sahilm/fuzzy"

	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/snapshot"
)

// resolveKnownRepoPath checks absPath against the snapshot registry's
// known repositories, fuzzy-matching the closest one when there is no
// exact entry — e.g. the caller typed the path slightly differently
// than it was indexed under (spec.md §6's "--path fuzzy match" note).
func resolveKnownRepoPath(absPath string) (string, error) {
	baseDir := paths.BaseDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	if err != nil {
		return "", err
	}

	if _, found, err := snap.Get(absPath); err == nil && found {
		return absPath, nil
	}

	all, err := snap.List()
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return absPath, nil
	}

	known := make([]string, len(all))
	for i, status := range all {
		known[i] = status.Path
	}

	matches := fuzzy.Find(absPath, known)
	if len(matches) == 0 {
		return absPath, nil
	}

	best := matches[0].Str
	if best != absPath {
		fmt.Fprintf(os.Stderr, "note: %q is not indexed; using closest match %q\n", absPath, best)
	}
	return best, nil
}
