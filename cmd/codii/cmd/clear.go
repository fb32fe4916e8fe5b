package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/snapshot"
)

func newClearCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete a repository's index",
		Long:  `Delete a repository's index and status entry, forcing a full reindex on the next "codii index" run. Clearing a repository that was never indexed is not an error.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClear(cmd, path)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "repository to clear (default: current directory)")
	return cmd
}

func runClear(cmd *cobra.Command, pathArg string) error {
	absPath, _, err := resolveRepoPath(pathArg)
	if err != nil {
		return err
	}

	baseDir := paths.BaseDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	if err != nil {
		return err
	}

	layout := paths.ForRepo(baseDir, absPath)
	clearedIndex, err := removePath(layout.IndexDir)
	if err != nil {
		return codiierrors.IOError(fmt.Sprintf("clearing index for %q", absPath), err)
	}
	clearedMerkle, err := removePath(layout.MerklePath)
	if err != nil {
		return codiierrors.IOError(fmt.Sprintf("clearing merkle cache for %q", absPath), err)
	}

	if err := snap.Remove(absPath); err != nil {
		return err
	}

	if clearedIndex || clearedMerkle {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared index for %s\n", absPath)
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s was not indexed\n", absPath)
	}
	return err
}

func removePath(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.RemoveAll(path); err != nil {
		return false, err
	}
	return true, nil
}
