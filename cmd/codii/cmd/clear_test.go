package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearCmdOnNeverIndexedRepoReportsNotCleared(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	cmd := newClearCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--path", root})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "was not indexed")
}

func TestClearCmdRemovesIndexedRepo(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	indexCmd := newIndexCmd()
	indexCmd.SetOut(&bytes.Buffer{})
	indexCmd.SetArgs([]string{root, "--no-progress"})
	require.NoError(t, indexCmd.Execute())

	clearCmd := newClearCmd()
	buf := &bytes.Buffer{}
	clearCmd.SetOut(buf)
	clearCmd.SetArgs([]string{"--path", root})
	require.NoError(t, clearCmd.Execute())
	assert.Contains(t, buf.String(), "cleared index for")

	statusCmd := newStatusCmd()
	statusBuf := &bytes.Buffer{}
	statusCmd.SetOut(statusBuf)
	statusCmd.SetArgs([]string{"--path", root})
	require.NoError(t, statusCmd.Execute())
	assert.Contains(t, statusBuf.String(), "not_found")
}
