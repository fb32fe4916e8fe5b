package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/oOSomnus/codii/internal/snapshot"
)

// StyledRenderer renders a live progress bar with lipgloss-styled
// status lines, for interactive terminals.
type StyledRenderer struct {
	out   io.Writer
	style styles
	bar   *progressbar.ProgressBar
	stage snapshot.Stage
}

// NewStyledRenderer builds a StyledRenderer writing to out.
func NewStyledRenderer(out io.Writer, noColor bool) *StyledRenderer {
	return &StyledRenderer{out: out, style: getStyles(noColor)}
}

func (r *StyledRenderer) Start(repoPath string) {
	fmt.Fprintln(r.out, r.style.Header.Render("codii")+" "+r.style.Dim.Render("indexing "+repoPath))
}

func (r *StyledRenderer) UpdateProgress(event ProgressEvent) {
	if r.bar == nil || r.stage != event.Stage {
		if r.bar != nil {
			r.bar.Finish()
			fmt.Fprintln(r.out)
		}
		r.stage = event.Stage
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription(r.style.Stage.Render(string(event.Stage))),
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }),
		)
	}
	_ = r.bar.Set(percent(event.Current, event.Total))
}

func (r *StyledRenderer) Error(path string, err error) {
	fmt.Fprintln(r.out, r.style.Error.Render("error")+" "+path+": "+err.Error())
}

func (r *StyledRenderer) Complete(stats CompletionStats) {
	if r.bar != nil {
		r.bar.Finish()
		fmt.Fprintln(r.out)
	}
	summary := fmt.Sprintf("%d files, %d chunks in %s", stats.Files, stats.Chunks, stats.Duration.Round(time.Second))
	fmt.Fprintln(r.out, r.style.Success.Render("done")+" "+summary)
}
