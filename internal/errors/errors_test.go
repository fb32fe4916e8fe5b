package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesCategoryAndSeverity(t *testing.T) {
	err := New(CodeDimensionMismatch, "boom", nil)
	assert.Equal(t, CategoryDimension, err.Category)
	assert.Equal(t, SeverityFatal, err.Severity)
	assert.False(t, err.Retryable)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(CodeInternal, nil))
}

func TestUnwrapAndIs(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeFileUnreadable, cause)
	require.Error(t, err)
	assert.Same(t, cause, errors.Unwrap(err))

	other := New(CodeFileUnreadable, "different message", nil)
	assert.True(t, errors.Is(err, other))

	mismatch := New(CodeQueryInvalid, "x", nil)
	assert.False(t, errors.Is(err, mismatch))
}

func TestWithDetail(t *testing.T) {
	err := New(CodeConfigInvalid, "bad yaml", nil).WithDetail("line", "12")
	assert.Equal(t, "12", err.Details["line"])
}

func TestIsRetryableAndFatal(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeLockFailed, "locked", nil)))
	assert.False(t, IsRetryable(New(CodeQueryInvalid, "bad", nil)))
	assert.True(t, IsFatal(New(CodeIndexIntegrity, "corrupt", nil)))
	assert.False(t, IsFatal(nil))
}

func TestDimensionError(t *testing.T) {
	err := DimensionError(384, 256)
	assert.Equal(t, CodeDimensionMismatch, Code(err))
	assert.Equal(t, "384", err.Details["expected"])
}
