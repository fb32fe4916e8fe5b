// Package orchestrator implements the indexing pipeline of spec.md
// §4.9: scan, diff against the merkle cache, and reconcile the chunk
// store and vector index through a cooperatively cancellable
// background worker, reporting progress through the snapshot
// registry.
package orchestrator

import (
	"github.com/oOSomnus/codii/internal/embed"
	"github.com/oOSomnus/codii/internal/snapshot"
	"github.com/oOSomnus/codii/internal/telemetry"
)

// Result is index_codebase's immediate return value (spec.md §6).
type Result string

const (
	Accepted  Result = "accepted"
	NoChanges Result = "no_changes"
)

// Options carries index_codebase's optional inputs (spec.md §6).
type Options struct {
	Force bool
	// Splitter selects the chunker; "text" forces the sliding-window
	// chunker even for languages with a registered grammar. Empty or
	// "ast" uses the AST chunker (which itself falls back to text per
	// file when parsing fails).
	Splitter         string
	CustomExtensions []string
	IgnorePatterns   []string
	// Submodules opts into scanning initialized git submodules, passed
	// straight through to scanner.Options (SPEC_FULL.md §4.1).
	Submodules bool
}

// Orchestrator runs indexing operations for any repository under
// baseDir, using one process-wide embedder instance (spec.md §9's
// singleton embedder design note).
type Orchestrator struct {
	baseDir  string
	embedder embed.Embedder
	snap     *snapshot.Store
	metrics  *telemetry.Metrics
}

// New builds an Orchestrator. embedder is the process-wide instance the
// caller owns; snap is the shared cross-repo status registry; metrics
// may be nil, in which case a private, unregistered Metrics is used so
// recording never panics.
func New(baseDir string, embedder embed.Embedder, snap *snapshot.Store, metrics *telemetry.Metrics) *Orchestrator {
	if metrics == nil {
		metrics = telemetry.New()
	}
	return &Orchestrator{baseDir: baseDir, embedder: embedder, snap: snap, metrics: metrics}
}

// Run tracks one in-flight or completed background indexing operation,
// so the CLI may optionally await it (spec.md §4.9 step 7).
type Run struct {
	done chan struct{}
	err  error
}

func newRun() *Run {
	return &Run{done: make(chan struct{})}
}

func (r *Run) finish(err error) {
	r.err = err
	close(r.done)
}

// Wait blocks until the background worker completes and returns its
// error, if any.
func (r *Run) Wait() error {
	<-r.done
	return r.err
}
