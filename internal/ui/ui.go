// Package ui renders indexing progress and search results for the
// codii CLI: a styled renderer for interactive terminals and a plain
// line-oriented renderer for pipes, CI, NO_COLOR and --no-progress runs.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/oOSomnus/codii/internal/snapshot"
)

// ProgressEvent mirrors one gated progress update from the
// orchestrator (internal/orchestrator's progressWriter), reusing
// snapshot.Stage rather than a UI-local enum so the renderer never
// drifts from what the pipeline actually reports.
type ProgressEvent struct {
	Stage   snapshot.Stage
	Current int
	Total   int
	Message string
}

// CompletionStats summarizes a finished index run.
type CompletionStats struct {
	Files    int
	Chunks   int
	Duration time.Duration
}

// Renderer displays one indexing run's lifecycle.
type Renderer interface {
	Start(repoPath string)
	UpdateProgress(event ProgressEvent)
	Error(path string, err error)
	Complete(stats CompletionStats)
}

// Config selects a renderer's behavior.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
}

// NewRenderer returns a plain renderer when ForcePlain is set, the output
// is not a terminal, CI is detected, or NO_COLOR is set, and a styled
// renderer otherwise. Config.NoColor keeps the styled renderer but drops
// its colors.
func NewRenderer(cfg Config) Renderer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() || DetectNoColor() {
		return NewPlainRenderer(cfg.Output)
	}
	return NewStyledRenderer(cfg.Output, cfg.NoColor)
}

// IsTTY reports whether w is a terminal file descriptor.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether the NO_COLOR convention is set.
func DetectNoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// DetectCI reports whether common CI environment variables are set.
func DetectCI() bool {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		if _, ok := os.LookupEnv(v); ok {
			return true
		}
	}
	return false
}
