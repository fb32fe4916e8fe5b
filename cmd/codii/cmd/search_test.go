package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmdRejectsUnindexedRepo(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	cmd := newSearchCmd()
	cmd.SetArgs([]string{"--path", root, "main"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))
}

func TestSearchCmdRejectsEmptyQuery(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())

	cmd := newSearchCmd()
	cmd.SetArgs([]string{"   "})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestSearchCmdReturnsResultsAfterIndexing(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	indexCmd := newIndexCmd()
	indexCmd.SetOut(&bytes.Buffer{})
	indexCmd.SetArgs([]string{root, "--no-progress"})
	require.NoError(t, indexCmd.Execute())

	searchCmd := newSearchCmd()
	buf := &bytes.Buffer{}
	searchCmd.SetOut(buf)
	searchCmd.SetArgs([]string{"--path", root, "main"})
	require.NoError(t, searchCmd.Execute())
	assert.Contains(t, buf.String(), "results for")
}
