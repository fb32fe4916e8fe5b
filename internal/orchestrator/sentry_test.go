package orchestrator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

func TestReportFatalNoOpWithoutDSN(t *testing.T) {
	t.Setenv("CODII_SENTRY_DSN", "")
	assert.NotPanics(t, func() {
		reportFatal("run-1", "/repo", codiierrors.IntegrityError("corrupt", nil))
	})
}

func TestReportFatalIgnoresNonFatalErrors(t *testing.T) {
	t.Setenv("CODII_SENTRY_DSN", "")
	assert.NotPanics(t, func() {
		reportFatal("run-1", "/repo", codiierrors.ValidationError("bad input", nil))
		reportFatal("run-1", "/repo", errors.New("plain error"))
	})
}

func TestRecoverWorkerPanicReturnsNilWithoutPanic(t *testing.T) {
	func() {
		defer func() {
			err := recoverWorkerPanic("run-1", "/repo")
			assert.NoError(t, err)
		}()
	}()
}

func TestRecoverWorkerPanicCapturesPanic(t *testing.T) {
	var captured error
	func() {
		defer func() {
			captured = recoverWorkerPanic("run-1", "/repo")
		}()
		panic("boom")
	}()
	assert.ErrorContains(t, captured, "boom")
}
