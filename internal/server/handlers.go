package server

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/logger"
	"github.com/paperflow-app/paperflow/internal/metrics"
	"github.com/paperflow-app/paperflow/internal/settings"
)

type createWorkspaceRequest struct {
	Name string `json:"name" validate:"required"`
}

type renameWorkspaceRequest struct {
	Name string `json:"name" validate:"required"`
}

type importPapersRequest struct {
	Paths       []string `json:"paths" validate:"required,min=1,dive,required"`
	WorkspaceID string   `json:"workspaceId" validate:"required"`
}

type createNoteRequest struct {
	PaperID string  `json:"paperId" validate:"required"`
	Page    int     `json:"page" validate:"gte=0"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content" validate:"required"`
	Color   *string `json:"color" validate:"omitempty,hexcolor"`
}

type updateNoteRequest struct {
	Content *string `json:"content"`
	Color   *string `json:"color" validate:"omitempty,hexcolor"`
}

type paperOpenedRequest struct {
	Page        int64 `json:"page" validate:"gte=0"`
	ReadSeconds int64 `json:"readSeconds" validate:"gte=0"`
}

type createTagRequest struct {
	Name  string  `json:"name" validate:"required"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req createWorkspaceRequest
	if !s.decode(w, r, &req) {
		return
	}

	ws, err := s.store.CreateWorkspace(r.Context(), req.Name)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleRenameWorkspace(w http.ResponseWriter, r *http.Request) {
	var req renameWorkspaceRequest
	if !s.decode(w, r, &req) {
		return
	}

	ws, err := s.store.RenameWorkspace(r.Context(), chi.URLParam(r, "workspaceID"), req.Name)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWorkspace(r.Context(), chi.URLParam(r, "workspaceID")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.store.ListPapers(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, papers)
}

func (s *Server) handleImportPapers(w http.ResponseWriter, r *http.Request) {
	var req importPapersRequest
	if !s.decode(w, r, &req) {
		return
	}

	papers, err := s.store.ImportPapers(r.Context(), domain.PaperImportRequest{
		Paths:       req.Paths,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		s.handleError(w, err)
		return
	}

	metrics.ObserveImport(len(papers))
	logger.FromContext(r.Context()).Info("imported papers",
		zap.Int("count", len(papers)),
		zap.String("workspaceId", req.WorkspaceID),
	)
	writeJSON(w, http.StatusOK, papers)
}

func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := s.store.GetPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func (s *Server) handleGetPaperStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetPaperStats(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePaperOpened(w http.ResponseWriter, r *http.Request) {
	var req paperOpenedRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.store.RecordPaperOpened(r.Context(), chi.URLParam(r, "paperID"), req.Page, req.ReadSeconds)
	if err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewResponse struct {
	Paper     domain.Paper `json:"paper"`
	Page      int64        `json:"page"`
	Available bool         `json:"available"`
}

// handlePreview returns viewer metadata for a paper page and records the
// page as last opened, unless the page was previewed recently.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	paperID := chi.URLParam(r, "paperID")

	page := int64(1)
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	paper, err := s.store.GetPaper(r.Context(), paperID)
	if err != nil {
		s.handleError(w, err)
		return
	}

	_, statErr := os.Stat(paper.Path)

	if !s.recents.Touch(paperID, page) {
		if err := s.store.RecordPaperOpened(r.Context(), paperID, page, 0); err != nil {
			s.handleError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Paper:     paper,
		Page:      page,
		Available: statErr == nil,
	})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.ListNotes(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	note, err := s.store.CreateNote(r.Context(), domain.NewNote{
		PaperID: req.PaperID,
		Page:    req.Page,
		X:       req.X,
		Y:       req.Y,
		Content: req.Content,
		Color:   req.Color,
	})
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.store.GetNote(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	note, err := s.store.UpdateNote(r.Context(), domain.UpdateNote{
		ID:      chi.URLParam(r, "noteID"),
		Content: req.Content,
		Color:   req.Color,
	})
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNote(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNoteReviewed(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RecordNoteReviewed(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNoteTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListNoteTags(r.Context(), chi.URLParam(r, "noteID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTagNote(w http.ResponseWriter, r *http.Request) {
	err := s.store.TagNote(r.Context(), chi.URLParam(r, "noteID"), chi.URLParam(r, "tagID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUntagNote(w http.ResponseWriter, r *http.Request) {
	err := s.store.UntagNote(r.Context(), chi.URLParam(r, "noteID"), chi.URLParam(r, "tagID"))
	if err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !s.decode(w, r, &req) {
		return
	}

	tag, err := s.store.CreateTag(r.Context(), req.Name, req.Color)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTag(r.Context(), chi.URLParam(r, "tagID")); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	hits, err := s.store.SearchQuery(r.Context(), term, limit)
	if err != nil {
		s.handleError(w, err)
		return
	}

	metrics.ObserveSearch()
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleSearchRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SearchRebuild(r.Context()); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.ReviewSummary(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := settings.Load(s.settingsPath)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.Settings
	if !s.decode(w, r, &req) {
		return
	}

	if err := settings.Save(s.settingsPath, req); err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
