// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := runCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRootCmd_NoArgs(t *testing.T) {
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})

	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "codetriage")
}

func TestRenderCmd_WritesBothArtifacts(t *testing.T) {
	dir := t.TempDir()

	result := schemas.DetectionResult{
		TotalIssues: 1,
		Issues: []schemas.Finding{
			{Severity: schemas.SeverityError, Type: "unhandled_exception", File: "app.py", Line: 3},
		},
	}
	raw, err := stdjson.Marshal(result)
	require.NoError(t, err)

	resultFile := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(resultFile, raw, 0o644))

	_, err = runCommand(t, "render", resultFile,
		"--task-id", "task-local",
		"--file-path", "app.py",
		"--out", dir)
	require.NoError(t, err)

	narrative, err := os.ReadFile(filepath.Join(dir, "task-local.md"))
	require.NoError(t, err)
	assert.Contains(t, string(narrative), "# Analysis Report")
	assert.Contains(t, string(narrative), "unhandled_exception")

	payload, err := os.ReadFile(filepath.Join(dir, "task-local.json"))
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"task_id": "task-local"`)
}

func TestRenderCmd_MissingFile(t *testing.T) {
	_, err := runCommand(t, "render", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestRenderCmd_MalformedResult(t *testing.T) {
	dir := t.TempDir()
	resultFile := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(resultFile, []byte("{not json"), 0o644))

	_, err := runCommand(t, "render", resultFile, "--out", dir)
	require.Error(t, err)
}
