package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/config"
	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/settings"
	"github.com/paperflow-app/paperflow/internal/store"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{
		Data:   config.DataConfig{Dir: dir},
		Search: config.SearchConfig{DefaultLimit: 20},
	}
	s := New(st, cfg, zap.NewNop())
	return s, s.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func importTestPaper(t *testing.T, h http.Handler) domain.Paper {
	t.Helper()

	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("paper bytes"), 0o644))

	rec := doJSON(t, h, http.MethodPost, "/api/v1/papers/import", map[string]any{
		"paths":       []string{path},
		"workspaceId": domain.DefaultWorkspaceID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	papers := decodeBody[[]domain.Paper](t, rec)
	require.Len(t, papers, 1)
	return papers[0]
}

func TestWorkspaceEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/workspaces", map[string]string{"name": "My Papers!"})
	require.Equal(t, http.StatusCreated, rec.Code)
	ws := decodeBody[domain.Workspace](t, rec)
	assert.Equal(t, "my-papers", ws.ID)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/workspaces", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/workspaces/"+ws.ID, map[string]string{"name": "Thesis"})
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decodeBody[domain.Workspace](t, rec)
	assert.Equal(t, "Thesis", renamed.Name)
	assert.Equal(t, ws.ID, renamed.ID)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/workspaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]domain.Workspace](t, rec)
	assert.Len(t, list, 2) // default + created

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/workspaces/"+domain.DefaultWorkspaceID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/workspaces/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, domain.CodeNotFound, errResp.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/workspaces/"+ws.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestImportAndNoteFlow(t *testing.T) {
	_, h := newTestServer(t)

	paper := importTestPaper(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"paperId": paper.ID,
		"page":    2,
		"x":       0.4,
		"y":       0.6,
		"content": "key result on page two",
		"color":   "#ff8800",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decodeBody[domain.Note](t, rec)
	assert.Equal(t, paper.ID, note.PaperID)

	// Searchable right away.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/search?q=result", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hits := decodeBody[[]domain.SearchHit](t, rec)
	require.Len(t, hits, 1)
	assert.Equal(t, note.ID, hits[0].RefID)

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/notes/"+note.ID, map[string]any{
		"content": "revised result",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/notes/"+note.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/notes/"+note.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateNote_InvalidColorRejected(t *testing.T) {
	_, h := newTestServer(t)
	paper := importTestPaper(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"paperId": paper.ID,
		"content": "bad color",
		"color":   "orange",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, domain.CodeBadRequest, errResp.Code)
}

func TestImport_MissingFileMapsTo422(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/papers/import", map[string]any{
		"paths":       []string{filepath.Join(t.TempDir(), "missing.pdf")},
		"workspaceId": domain.DefaultWorkspaceID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decodeBody[errorResponse](t, rec)
	assert.Equal(t, domain.CodeIOError, errResp.Code)
}

func TestPreviewRecordsLastOpenedPageOnce(t *testing.T) {
	_, h := newTestServer(t)
	paper := importTestPaper(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/papers/"+paper.ID+"/preview?page=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decodeBody[previewResponse](t, rec)
	assert.Equal(t, int64(7), preview.Page)
	assert.True(t, preview.Available)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/papers/"+paper.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[domain.PaperStats](t, rec)
	require.NotNil(t, stats.LastOpenedPage)
	assert.Equal(t, int64(7), *stats.LastOpenedPage)

	// A hot page is served from the recents cache without touching stats.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/papers/"+paper.ID+"/preview?page=7", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/papers/"+paper.ID+"/preview?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsAndReviewEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	paper := importTestPaper(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/papers/"+paper.ID+"/opened", map[string]any{
		"page":        3,
		"readSeconds": 90,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"paperId": paper.ID,
		"content": "to review",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decodeBody[domain.Note](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/notes/"+note.ID+"/reviewed", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/review/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[domain.ReviewSummary](t, rec)
	assert.Equal(t, int64(1), summary.PaperCount)
	assert.Equal(t, int64(1), summary.ReviewedNotes)
}

func TestTagEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	paper := importTestPaper(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"paperId": paper.ID,
		"content": "taggable",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	note := decodeBody[domain.Note](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/tags", map[string]any{"name": "followup"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decodeBody[domain.Tag](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/tags", map[string]any{"name": "followup"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/v1/notes/"+note.ID+"/tags/"+tag.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/notes/"+note.ID+"/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decodeBody[[]domain.Tag](t, rec)
	require.Len(t, tags, 1)
	assert.Equal(t, "followup", tags[0].Name)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/notes/"+note.ID+"/tags/"+tag.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/tags/"+tag.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[settings.Settings](t, rec)
	assert.Equal(t, settings.Default(), got)

	want := settings.Settings{
		Theme:                  "dark",
		DefaultWorkspaceID:     domain.DefaultWorkspaceID,
		GlobalShortcutsEnabled: false,
	}
	rec = doJSON(t, h, http.MethodPut, "/api/v1/settings", want)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[settings.Settings](t, rec)
	assert.Equal(t, want, got)
}

func TestSearchRebuildEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/search/rebuild", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
