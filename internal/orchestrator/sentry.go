package orchestrator

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// sentryOnce guards the one-time Init against CODII_SENTRY_DSN; reporting
// stays a no-op for the life of the process when the variable is unset
// (spec.md §7: "purely additive telemetry, never gates control flow").
var sentryOnce sync.Once
var sentryEnabled bool

func initSentry() {
	dsn := os.Getenv("CODII_SENTRY_DSN")
	if dsn == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		slog.Warn("sentry init failed, continuing without crash reporting", "error", err)
		return
	}
	sentryEnabled = true
}

// reportFatal sends runID/repoPath-scoped fatal orchestrator failures
// (index integrity errors, vector dimension mismatches — spec.md §7) to
// Sentry when CODII_SENTRY_DSN is configured. Non-fatal failures
// (validation, cancellation, ordinary IO) are never reported; this is
// purely additive telemetry and never gates control flow.
func reportFatal(runID, repoPath string, cause error) {
	if cause == nil || !codiierrors.IsFatal(cause) {
		return
	}
	send(runID, repoPath, cause)
}

// recoverWorkerPanic turns a recovered panic into an error and always
// reports it, so a single repository's malformed input cannot take the
// process down. Call via defer at the top of the worker goroutine.
func recoverWorkerPanic(runID, repoPath string) error {
	r := recover()
	if r == nil {
		return nil
	}
	err := fmt.Errorf("panic in index worker: %v", r)
	send(runID, repoPath, err)
	return err
}

func send(runID, repoPath string, cause error) {
	sentryOnce.Do(initSentry)
	if !sentryEnabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("run_id", runID)
		scope.SetTag("repo_path", repoPath)
		sentry.CaptureException(cause)
	})
}
