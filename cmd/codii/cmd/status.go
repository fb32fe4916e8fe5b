package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/snapshot"
	"github.com/oOSomnus/codii/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var (
		path       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show indexing status for one or all known repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, path, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "repository to check (default: list all known repositories)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, pathArg string, jsonOutput bool) error {
	baseDir := paths.BaseDir()
	snap, err := snapshot.Open(filepath.Join(baseDir, "snapshots", "snapshot.json"))
	if err != nil {
		return err
	}

	var statuses []snapshot.CodebaseStatus
	if pathArg != "" {
		absPath, _, err := resolveRepoPath(pathArg)
		if err != nil {
			return err
		}
		status, found, err := snap.Get(absPath)
		if err != nil {
			return err
		}
		if !found {
			status = snapshot.NotFound(absPath)
		}
		statuses = []snapshot.CodebaseStatus{status}
	} else {
		statuses, err = snap.List()
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	return printStatuses(cmd, statuses)
}

func printStatuses(cmd *cobra.Command, statuses []snapshot.CodebaseStatus) error {
	noColor := ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout())
	label := lipgloss.NewStyle()
	dim := lipgloss.NewStyle()
	if !noColor {
		label = label.Bold(true)
		dim = dim.Foreground(lipgloss.Color("245"))
	}

	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		fmt.Fprintln(out, dim.Render("no repositories indexed yet"))
		return nil
	}

	for _, s := range statuses {
		fmt.Fprintf(out, "%s  %s\n", label.Render(s.Path), string(s.Status))
		switch s.Status {
		case snapshot.StatusIndexing:
			fmt.Fprintf(out, "  %s %d%%\n", string(s.CurrentStage), s.Progress)
		case snapshot.StatusIndexed:
			fmt.Fprintf(out, "  %d files, %d chunks, %d tokens, updated %s\n", s.IndexedFiles, s.TotalChunks, s.TotalTokens, s.LastUpdated)
		case snapshot.StatusFailed:
			fmt.Fprintf(out, "  %s\n", dim.Render(s.ErrorMessage))
		}
	}
	return nil
}
