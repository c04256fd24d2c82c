package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperflow-app/paperflow/internal/domain"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoErrorf(t, err, "Open() iteration %d failed", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	tables := []string{"workspace", "paper", "note", "paper_stats", "note_stats", "tag", "note_tag", "search_index"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE name = ?", table,
		).Scan(&name)
		assert.NoErrorf(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_SeedsDefaultWorkspace(t *testing.T) {
	s := newTestStore(t)

	workspaces, err := s.ListWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, domain.DefaultWorkspaceID, workspaces[0].ID)
	assert.Equal(t, "Default Workspace", workspaces[0].Name)
}

func TestOpen_DefaultWorkspaceSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)

	// Rename the default workspace, then reopen: the seed must not
	// clobber the user's name.
	_, err = s1.RenameWorkspace(context.Background(), domain.DefaultWorkspaceID, "Inbox")
	require.NoError(t, err)
	s1.Close()

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	workspaces, err := s2.ListWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, "Inbox", workspaces[0].Name)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}
