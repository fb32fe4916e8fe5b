package scanner

import (
	"errors"

	"github.com/go-git/go-git/v5"
)

// listSubmodules returns the repo-relative, forward-slash paths of root's
// configured git submodules (from .gitmodules), or nil if root is not a
// git repository at all. An error here never fails the scan: a repo
// scanned outside of git (e.g. an extracted tarball) simply has no
// submodules to discover (SPEC_FULL.md §4.1).
func listSubmodules(root string) ([]string, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, nil
		}
		return nil, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil
	}

	submodules, err := wt.Submodules()
	if err != nil {
		return nil, nil
	}

	paths := make([]string, 0, len(submodules))
	for _, sm := range submodules {
		paths = append(paths, sm.Config().Path)
	}
	return paths, nil
}
