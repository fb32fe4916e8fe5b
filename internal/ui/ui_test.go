package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oOSomnus/codii/internal/snapshot"
)

func TestPlainRendererWritesStageAndPercent(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(&buf)

	r.Start("/repo")
	r.UpdateProgress(ProgressEvent{Stage: snapshot.StageChunking, Current: 5, Total: 10, Message: "a.go"})
	r.Error("b.go", errors.New("parse failed"))
	r.Complete(CompletionStats{Files: 3, Chunks: 12, Duration: 2 * time.Second})

	out := buf.String()
	assert.Contains(t, out, "/repo")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "chunking")
	assert.Contains(t, out, "b.go: parse failed")
	assert.Contains(t, out, "3 files, 12 chunks")
}

func TestPercentClampsToHundred(t *testing.T) {
	assert.Equal(t, 100, percent(5, 0))
	assert.Equal(t, 100, percent(20, 10))
	assert.Equal(t, 50, percent(1, 2))
}

func TestRenderBarWidthMatchesRequestedWidth(t *testing.T) {
	bar := renderBar(5, 10, 20)
	assert.Len(t, bar, 20)
	assert.True(t, strings.HasPrefix(bar, "=========="))
}

func TestDetectNoColorRespectsEnvVar(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCIRespectsEnvVar(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestNewRendererReturnsPlainForNonTTYOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(Config{Output: &buf})
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok, "a bytes.Buffer is never a TTY, so the plain renderer must be chosen")
}
