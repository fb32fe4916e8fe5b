package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRejectsShortSingleToken(t *testing.T) {
	_, err := Process("ok")
	assert.Error(t, err)
}

func TestProcessRejectsEmptyQuery(t *testing.T) {
	_, err := Process("   ")
	assert.Error(t, err)
}

func TestProcessAllowsShortTokenWhenNotAlone(t *testing.T) {
	result, err := Process("go routine")
	require.NoError(t, err)
	assert.Contains(t, result.Terms, "go")
}

func TestProcessSplitsCamelCase(t *testing.T) {
	result, err := Process("fooBar")
	require.NoError(t, err)
	assert.Contains(t, result.Terms, "foo")
	assert.Contains(t, result.Terms, "bar")
	assert.Contains(t, result.Terms, "foobar")
}

func TestProcessSplitsSnakeCase(t *testing.T) {
	result, err := Process("foo_bar")
	require.NoError(t, err)
	assert.Contains(t, result.Terms, "foo")
	assert.Contains(t, result.Terms, "bar")
}

func TestProcessExpandsKnownAbbreviations(t *testing.T) {
	result, err := Process("kalloc failure")
	require.NoError(t, err)
	assert.Contains(t, result.ExpandedTerms, "kernel_allocate")
	assert.Contains(t, result.ExpandedTerms, "kalloc")
}

func TestProcessExpressionIsDisjunctiveAndPrefixed(t *testing.T) {
	result, err := Process("mem leak")
	require.NoError(t, err)
	assert.Contains(t, result.Expression, "mem*")
	assert.Contains(t, result.Expression, "memory*")
	assert.Contains(t, result.Expression, " OR ")
}

func TestProcessDedupesExpandedTerms(t *testing.T) {
	result, err := Process("ctx ctx")
	require.NoError(t, err)
	count := 0
	for _, t := range result.ExpandedTerms {
		if t == "ctx" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAbbreviationTableHasAtLeast50Entries(t *testing.T) {
	assert.GreaterOrEqual(t, len(abbreviations), 50)
}
