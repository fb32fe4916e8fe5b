package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	return root
}

func TestIndexCmdIndexesThenReportsNoChanges(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	cmd := newIndexCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{root, "--no-progress"})
	require.NoError(t, cmd.Execute())

	cmd2 := newIndexCmd()
	buf2 := &bytes.Buffer{}
	cmd2.SetOut(buf2)
	cmd2.SetArgs([]string{root, "--no-progress"})
	require.NoError(t, cmd2.Execute())
	assert.Contains(t, buf2.String(), "already up to date")
}

func TestIndexCmdRejectsTooManyArgs(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())

	cmd := newIndexCmd()
	cmd.SetArgs([]string{"a", "b"})
	err := cmd.Execute()
	require.Error(t, err)
}
