package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oOSomnus/codii/internal/snapshot"
)

func TestStatusCmdReportsNoRepositories(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())

	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "no repositories indexed yet")
}

func TestStatusCmdJSONOutputAfterIndexing(t *testing.T) {
	t.Setenv("CODII_BASE_DIR", t.TempDir())
	root := writeTestRepo(t)

	indexCmd := newIndexCmd()
	indexCmd.SetOut(&bytes.Buffer{})
	indexCmd.SetArgs([]string{root, "--no-progress"})
	require.NoError(t, indexCmd.Execute())

	statusCmd := newStatusCmd()
	buf := &bytes.Buffer{}
	statusCmd.SetOut(buf)
	statusCmd.SetArgs([]string{"--path", root, "--json"})
	require.NoError(t, statusCmd.Execute())

	var statuses []snapshot.CodebaseStatus
	require.NoError(t, json.Unmarshal(buf.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, snapshot.StatusIndexed, statuses[0].Status)
}
