// Package watcher provides live-mode file watching for codii (spec.md
// §4.9.1, a supplemented feature beyond the distilled spec): a
// debounced, gitignore-aware watcher over fsnotify, falling back to
// polling when fsnotify is unavailable, that drives the same
// orchestrator Index entrypoint used by the CLI and MCP
// index_codebase operation.
package watcher

import (
	"context"
	"time"
)

// Operation classifies a raw filesystem change.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
	OpRename
	OpGitignoreChange
	OpConfigChange
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	case OpGitignoreChange:
		return "gitignore_change"
	case OpConfigChange:
		return "config_change"
	default:
		return "unknown"
	}
}

// FileEvent is one (possibly coalesced) change to a path under the
// watched root, relative to that root.
type FileEvent struct {
	Path      string
	OldPath   string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Options configures a watcher.
type Options struct {
	// DebounceWindow coalesces bursts of events (IDE saves, git
	// checkouts) before they are reported.
	DebounceWindow time.Duration
	// PollInterval governs the polling fallback's scan frequency.
	PollInterval time.Duration
	// EventBufferSize bounds the batched-event output channel.
	EventBufferSize int
	// IgnorePatterns supplements the repo's .gitignore and codii's
	// own default ignore set.
	IgnorePatterns []string
}

// DefaultOptions returns codii's live-mode defaults.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  300 * time.Millisecond,
		PollInterval:    5 * time.Second,
		EventBufferSize: 1000,
	}
}

// WithDefaults fills zero-valued fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = d.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}

// Watcher is the common interface of both watching strategies.
// Events are emitted as debounced batches.
type Watcher interface {
	Start(ctx context.Context, path string) error
	Stop() error
	Events() <-chan []FileEvent
	Errors() <-chan error
}
