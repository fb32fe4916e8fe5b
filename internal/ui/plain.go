package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PlainRenderer writes one status line per event with no cursor
// control, suitable for pipes, log files, and CI.
type PlainRenderer struct {
	out io.Writer
}

// NewPlainRenderer builds a PlainRenderer writing to out.
func NewPlainRenderer(out io.Writer) *PlainRenderer {
	return &PlainRenderer{out: out}
}

func (r *PlainRenderer) Start(repoPath string) {
	fmt.Fprintf(r.out, "indexing %s\n", repoPath)
}

func (r *PlainRenderer) UpdateProgress(event ProgressEvent) {
	pct := percent(event.Current, event.Total)
	bar := renderBar(event.Current, event.Total, 20)
	fmt.Fprintf(r.out, "[%s] %3d%% %-9s %s\n", bar, pct, event.Stage, event.Message)
}

func (r *PlainRenderer) Error(path string, err error) {
	fmt.Fprintf(r.out, "error  %s: %s\n", path, err)
}

func (r *PlainRenderer) Complete(stats CompletionStats) {
	fmt.Fprintf(r.out, "done   %d files, %d chunks in %s\n", stats.Files, stats.Chunks, stats.Duration.Round(time.Second))
}

func percent(current, total int) int {
	if total <= 0 {
		return 100
	}
	pct := current * 100 / total
	if pct > 100 {
		pct = 100
	}
	return pct
}

// renderBar draws the fixed-width ASCII progress bar shown in each of
// PlainRenderer's progress lines.
func renderBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("-", width)
	}
	filled := current * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("=", filled) + strings.Repeat("-", width-filled)
}
