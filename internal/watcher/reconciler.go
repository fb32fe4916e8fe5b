package watcher

import (
	"context"
	"log/slog"

	"github.com/oOSomnus/codii/internal/orchestrator"
)

// Reconciler drives a Watcher's debounced event stream into the
// orchestrator's Index entrypoint, so live mode reuses exactly the
// same scan/diff/chunk/embed pipeline as an explicit index_codebase
// call (spec.md §4.9.1). It does not reconcile individual paths
// itself: Index already diffs against the merkle cache, so any batch
// of changes, however large, collapses to one incremental run. A
// .gitignore or config change re-reads the config file on the next
// run the same way, since Index calls config.Load itself.
type Reconciler struct {
	orch      *orchestrator.Orchestrator
	repoPath  string
	indexOpts orchestrator.Options
	watcher   *hybridWatcher
}

// NewReconciler builds a live-mode watcher for repoPath that triggers
// indexOpts-configured Index runs through orch.
func NewReconciler(orch *orchestrator.Orchestrator, repoPath string, watchOpts Options, indexOpts orchestrator.Options) *Reconciler {
	return &Reconciler{
		orch:      orch,
		repoPath:  repoPath,
		indexOpts: indexOpts,
		watcher:   newHybridWatcher(watchOpts),
	}
}

// WatcherType reports "fsnotify" or "polling", for status reporting.
func (r *Reconciler) WatcherType() string {
	return r.watcher.WatcherType()
}

// Run starts the watcher and blocks, triggering one Index run per
// debounced batch of events, until ctx is cancelled or Stop is called.
// The first error returned by Start (including ctx.Err() on
// cancellation) ends the loop.
func (r *Reconciler) Run(ctx context.Context) error {
	startErr := make(chan error, 1)
	go func() { startErr <- r.watcher.Start(ctx, r.repoPath) }()

	for {
		select {
		case <-ctx.Done():
			_ = r.watcher.Stop()
			return ctx.Err()
		case err := <-startErr:
			return err
		case batch, ok := <-r.watcher.Events():
			if !ok {
				return <-startErr
			}
			r.reindex(ctx, batch)
		case err, ok := <-r.watcher.Errors():
			if !ok {
				continue
			}
			slog.Warn("watch error", "repo", r.repoPath, "error", err.Error())
		}
	}
}

// Stop stops the underlying watcher. Safe to call after Run returns.
func (r *Reconciler) Stop() error {
	return r.watcher.Stop()
}

func (r *Reconciler) reindex(ctx context.Context, batch []FileEvent) {
	slog.Info("live mode change detected, reindexing", "repo", r.repoPath, "changed_paths", len(batch))

	_, run, err := r.orch.Index(ctx, r.repoPath, r.indexOpts)
	if err != nil {
		slog.Warn("live mode reindex rejected", "repo", r.repoPath, "error", err.Error())
		return
	}
	if err := run.Wait(); err != nil {
		slog.Warn("live mode reindex failed", "repo", r.repoPath, "error", err.Error())
	}
}
