package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the command tree with the given args and returns the
// combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// okData runs a command with --format json and unmarshals the data
// payload of the response envelope.
func okData(t *testing.T, out string) json.RawMessage {
	t.Helper()

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	return data
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "workspace", "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestWorkspaceLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "workspace", "create", "My Papers!", "--data-dir", dir, "--format", "json")
	require.NoError(t, err)

	var ws struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(okData(t, out), &ws))
	assert.Equal(t, "my-papers", ws.ID)
	assert.Equal(t, "My Papers!", ws.Name)

	out, err = runCLI(t, "workspace", "list", "--data-dir", dir, "--format", "json")
	require.NoError(t, err)
	var list []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(okData(t, out), &list))
	assert.Len(t, list, 2) // default + created

	out, err = runCLI(t, "workspace", "rename", "my-papers", "Thesis", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Thesis")

	_, err = runCLI(t, "workspace", "delete", "my-papers", "--data-dir", dir)
	require.NoError(t, err)
}

func TestWorkspaceDelete_DefaultIsCommandError(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "workspace", "delete", "default_workspace", "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "default workspace")
}

func TestWorkspaceDelete_MissingIsFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "workspace", "delete", "ghost", "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestImportNoteSearchFlow(t *testing.T) {
	dir := t.TempDir()

	paperPath := filepath.Join(t.TempDir(), "deep learning.pdf")
	require.NoError(t, os.WriteFile(paperPath, []byte("paper bytes"), 0o644))

	out, err := runCLI(t, "import", paperPath, "--data-dir", dir, "--format", "json")
	require.NoError(t, err)
	var papers []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(okData(t, out), &papers))
	require.Len(t, papers, 1)
	assert.Equal(t, "deep learning", papers[0].Title)

	out, err = runCLI(t, "note", "add", papers[0].ID, "gradient clipping matters",
		"--page", "4", "--data-dir", dir, "--format", "json")
	require.NoError(t, err)
	var note struct {
		ID   string `json:"id"`
		Page int    `json:"page"`
	}
	require.NoError(t, json.Unmarshal(okData(t, out), &note))
	assert.Equal(t, 4, note.Page)

	out, err = runCLI(t, "search", "gradient", "--data-dir", dir, "--format", "json")
	require.NoError(t, err)
	var hits []struct {
		RefID string `json:"refId"`
	}
	require.NoError(t, json.Unmarshal(okData(t, out), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, note.ID, hits[0].RefID)

	out, err = runCLI(t, "search", "nomatchesanywhere", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No matches")
}

func TestImport_MissingFileFails(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "import", filepath.Join(dir, "missing.pdf"), "--data-dir", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "io_error")
}

func TestSearchRebuildCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, "search", "rebuild", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Rebuilt")
}
