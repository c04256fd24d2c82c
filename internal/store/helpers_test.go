package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// testClock hands out strictly increasing RFC 3339 timestamps so
// ordering by updatedAt is deterministic in tests.
type testClock struct {
	t    time.Time
	step time.Duration
}

func newTestClock() *testClock {
	return &testClock{
		t:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *testClock) Now() string {
	c.t = c.t.Add(c.step)
	return c.t.Format(time.RFC3339)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paperflow.db")
	s, err := Open(path, WithClock(newTestClock().Now))
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// writeTestFile creates a file with the given name and content in a
// fresh temp dir and returns its canonical path (symlinks resolved, so
// assertions against imported paper paths compare like for like).
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

// importOnePaper imports a single file into the default workspace and
// returns the resulting paper.
func importOnePaper(t *testing.T, s *Store, path string) domain.Paper {
	t.Helper()
	papers, err := s.ImportPapers(context.Background(), domain.PaperImportRequest{
		Paths:       []string{path},
		WorkspaceID: domain.DefaultWorkspaceID,
	})
	require.NoError(t, err)
	require.Len(t, papers, 1)
	return papers[0]
}

// createTestNote creates a note with the given content on a paper.
func createTestNote(t *testing.T, s *Store, paperID, content string) domain.Note {
	t.Helper()
	note, err := s.CreateNote(context.Background(), domain.NewNote{
		PaperID: paperID,
		Page:    1,
		X:       0.25,
		Y:       0.75,
		Content: content,
	})
	require.NoError(t, err)
	return note
}

// searchIDs runs a query and returns the matched refIds in rank order.
func searchIDs(t *testing.T, s *Store, term string) []string {
	t.Helper()
	hits, err := s.SearchQuery(context.Background(), term, 50)
	require.NoError(t, err)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.RefID
	}
	return ids
}

func strptr(s string) *string { return &s }
