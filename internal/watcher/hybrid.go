package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oOSomnus/codii/internal/gitignore"
)

// hybridWatcher watches a repository with fsnotify, falling back to
// polling when fsnotify cannot be created, and debounces the raw
// stream into batches filtered against the repo's .gitignore and
// codii's own default ignore set.
type hybridWatcher struct {
	fsWatcher   *fsnotify.Watcher
	pollWatcher *pollingWatcher
	useFsnotify bool
	debouncer   *debouncer
	gitignore   *gitignore.Matcher
	events      chan []FileEvent
	errors      chan error
	stopCh      chan struct{}
	rootPath    string
	opts        Options

	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

var _ Watcher = (*hybridWatcher)(nil)

// newHybridWatcher builds a watcher, attempting fsnotify first and
// falling back to polling if the OS refuses to hand out a watch
// descriptor.
func newHybridWatcher(opts Options) *hybridWatcher {
	opts = opts.WithDefaults()

	h := &hybridWatcher{
		debouncer: newDebouncer(opts.DebounceWindow),
		gitignore: gitignore.New(),
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}
	h.gitignore.AddPatterns(opts.IgnorePatterns)
	h.gitignore.AddPattern(".codii/")

	if fsw, err := fsnotify.NewWatcher(); err == nil {
		h.fsWatcher = fsw
		h.useFsnotify = true
	} else {
		h.useFsnotify = false
		h.pollWatcher = newPollingWatcher(opts.PollInterval)
	}
	return h
}

func (h *hybridWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	h.rootPath = absPath
	h.loadGitignore()

	go h.forwardDebounced(ctx)

	if h.useFsnotify {
		return h.startFsnotify(ctx)
	}
	return h.startPolling(ctx)
}

func (h *hybridWatcher) startFsnotify(ctx context.Context) error {
	if err := h.addRecursive(h.rootPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = h.Stop()
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case event, ok := <-h.fsWatcher.Events:
			if !ok {
				return nil
			}
			h.handleFsnotifyEvent(event)
		case err, ok := <-h.fsWatcher.Errors:
			if !ok {
				return nil
			}
			h.emitError(err)
		}
	}
}

func (h *hybridWatcher) startPolling(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case event, ok := <-h.pollWatcher.Events():
				if !ok {
					return
				}
				h.route(event.Path, event.Operation, event.IsDir)
			case err, ok := <-h.pollWatcher.Errors():
				if !ok {
					return
				}
				h.emitError(err)
			}
		}
	}()
	return h.pollWatcher.Start(ctx, h.rootPath)
}

func (h *hybridWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(h.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			_ = h.fsWatcher.Add(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	case event.Op&fsnotify.Chmod != 0:
		return
	default:
		return
	}

	h.route(relPath, op, isDir)
}

// route filters a raw event against the ignore set, detects the two
// special paths (.gitignore, .codii.yaml) that require reloading
// state instead of a plain reindex, and otherwise queues it for
// debouncing.
func (h *hybridWatcher) route(relPath string, op Operation, isDir bool) {
	if h.shouldIgnore(relPath, isDir) {
		return
	}

	base := filepath.Base(relPath)
	switch base {
	case ".gitignore":
		h.loadGitignore()
		h.debouncer.Add(FileEvent{Path: relPath, Operation: OpGitignoreChange, Timestamp: time.Now()})
		return
	case ".codii.yaml", ".codii.yml":
		h.debouncer.Add(FileEvent{Path: relPath, Operation: OpConfigChange, Timestamp: time.Now()})
		return
	}

	h.debouncer.Add(FileEvent{Path: relPath, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

func (h *hybridWatcher) forwardDebounced(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case events, ok := <-h.debouncer.Output():
			if !ok {
				return
			}
			if len(events) == 0 {
				continue
			}
			h.emitEvents(events)
		}
	}
}

func (h *hybridWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		relPath, _ := filepath.Rel(h.rootPath, path)
		if relPath == "." {
			return h.fsWatcher.Add(path)
		}
		if h.shouldIgnoreDir(relPath) {
			return filepath.SkipDir
		}
		return h.fsWatcher.Add(path)
	})
}

func (h *hybridWatcher) shouldIgnoreDir(relPath string) bool {
	if strings.HasPrefix(relPath, ".git") || relPath == ".git" {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gitignore.Match(relPath, true)
}

func (h *hybridWatcher) shouldIgnore(relPath string, isDir bool) bool {
	if relPath == "." || relPath == "" {
		return true
	}
	if strings.HasPrefix(relPath, ".git/") || relPath == ".git" {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gitignore.Match(relPath, isDir)
}

func (h *hybridWatcher) loadGitignore() {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := gitignore.New()
	m.AddPatterns(h.opts.IgnorePatterns)
	m.AddPattern(".codii/")
	if err := m.LoadFile(filepath.Join(h.rootPath, ".gitignore")); err != nil {
		slog.Warn("failed to load .gitignore", "path", h.rootPath, "error", err.Error())
	}
	h.gitignore = m
}

func (h *hybridWatcher) emitEvents(events []FileEvent) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}
	select {
	case h.events <- events:
	default:
		count := h.droppedBatches.Add(1)
		slog.Warn("watcher event buffer full, dropping batch", "batch_size", len(events), "total_dropped_batches", count)
	}
}

func (h *hybridWatcher) emitError(err error) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}
	select {
	case h.errors <- err:
	default:
	}
}

func (h *hybridWatcher) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true
	close(h.stopCh)
	h.debouncer.Stop()

	if h.useFsnotify && h.fsWatcher != nil {
		_ = h.fsWatcher.Close()
	}
	if h.pollWatcher != nil {
		_ = h.pollWatcher.Stop()
	}
	close(h.events)
	close(h.errors)
	return nil
}

func (h *hybridWatcher) Events() <-chan []FileEvent { return h.events }
func (h *hybridWatcher) Errors() <-chan error       { return h.errors }

// WatcherType reports which underlying strategy is active, for status
// reporting.
func (h *hybridWatcher) WatcherType() string {
	if h.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}
