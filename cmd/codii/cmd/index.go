package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/orchestrator"
	"github.com/oOSomnus/codii/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var (
		force      bool
		splitter   string
		extensions []string
		noProgress bool
		submodules bool
	)

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a repository for hybrid search",
		Long: `Scan a repository, chunk its files, generate embeddings, and build
the BM25 and vector indices used by "codii search". Only changed
files are reprocessed on subsequent runs, unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			return runIndex(cmd, arg, force, splitter, extensions, noProgress, submodules)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "reindex every file, ignoring the merkle cache")
	cmd.Flags().StringVar(&splitter, "splitter", "", "chunker to use: ast (default) or text")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "additional file extensions to index, beyond the configured set")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar and print plain status lines")
	cmd.Flags().BoolVar(&submodules, "submodules", false, "also scan into initialized git submodules")

	return cmd
}

func runIndex(cmd *cobra.Command, arg string, force bool, splitter string, extensions []string, noProgress, submodules bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	absPath, cfg, err := resolveRepoPath(arg)
	if err != nil {
		return err
	}

	result, run, err := a.orch.Index(ctx, absPath, orchestrator.Options{
		Force:            force,
		Splitter:         splitter,
		CustomExtensions: extensions,
		IgnorePatterns:   cfg.IgnorePatterns,
		Submodules:       submodules,
	})
	if err != nil {
		return err
	}

	if result == orchestrator.NoChanges {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s is already up to date\n", absPath)
		return err
	}

	return watchIndexProgress(cmd, a, absPath, run, noProgress)
}

// watchIndexProgress polls the snapshot registry while run is
// in-flight, feeding updates to a ui.Renderer until the background
// worker completes.
func watchIndexProgress(cmd *cobra.Command, a *app, absPath string, run *orchestrator.Run, noProgress bool) error {
	renderer := ui.NewRenderer(ui.Config{Output: cmd.OutOrStdout(), ForcePlain: noProgress})
	renderer.Start(absPath)
	start := time.Now()

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() { done <- run.Wait() }()

	var runErr error
loop:
	for {
		select {
		case <-ticker.C:
			status, ok, err := a.snap.Get(absPath)
			if err == nil && ok {
				renderer.UpdateProgress(ui.ProgressEvent{
					Stage:   status.CurrentStage,
					Current: status.Progress,
					Total:   100,
				})
			}
		case runErr = <-done:
			break loop
		}
	}

	if runErr != nil {
		renderer.Error(absPath, runErr)
		return codiierrors.Wrap(codiierrors.CodeInternal, runErr)
	}

	status, _, _ := a.snap.Get(absPath)
	renderer.Complete(ui.CompletionStats{
		Files:    status.IndexedFiles,
		Chunks:   status.TotalChunks,
		Duration: time.Since(start),
	})
	return nil
}
