package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/cache"
	"github.com/paperflow-app/paperflow/internal/config"
	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/logger"
	"github.com/paperflow-app/paperflow/internal/metrics"
	"github.com/paperflow-app/paperflow/internal/store"
)

// recentPages bounds how many previewed pages are remembered before
// stats recording kicks in again for a page.
const recentPages = 64

// Server is the local HTTP JSON surface over the repository.
type Server struct {
	store        *store.Store
	settingsPath string
	recents      *cache.Recents
	defaultLimit int
	log          *zap.Logger
	validate     *validator.Validate
}

// New creates the HTTP server.
func New(st *store.Store, cfg config.Config, log *zap.Logger) *Server {
	return &Server{
		store:        st,
		settingsPath: cfg.SettingsPath(),
		recents:      cache.New(recentPages),
		defaultLimit: cfg.Search.DefaultLimit,
		log:          log,
		validate:     validator.New(),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/workspaces", func(r chi.Router) {
			r.Get("/", s.handleListWorkspaces)
			r.Post("/", s.handleCreateWorkspace)
			r.Patch("/{workspaceID}", s.handleRenameWorkspace)
			r.Delete("/{workspaceID}", s.handleDeleteWorkspace)
			r.Get("/{workspaceID}/papers", s.handleListPapers)
		})

		r.Route("/papers", func(r chi.Router) {
			r.Post("/import", s.handleImportPapers)
			r.Get("/{paperID}", s.handleGetPaper)
			r.Get("/{paperID}/stats", s.handleGetPaperStats)
			r.Post("/{paperID}/opened", s.handlePaperOpened)
			r.Get("/{paperID}/preview", s.handlePreview)
			r.Get("/{paperID}/notes", s.handleListNotes)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", s.handleCreateNote)
			r.Get("/{noteID}", s.handleGetNote)
			r.Patch("/{noteID}", s.handleUpdateNote)
			r.Delete("/{noteID}", s.handleDeleteNote)
			r.Post("/{noteID}/reviewed", s.handleNoteReviewed)
			r.Get("/{noteID}/tags", s.handleListNoteTags)
			r.Put("/{noteID}/tags/{tagID}", s.handleTagNote)
			r.Delete("/{noteID}/tags/{tagID}", s.handleUntagNote)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Post("/", s.handleCreateTag)
			r.Delete("/{tagID}", s.handleDeleteTag)
		})

		r.Get("/search", s.handleSearch)
		r.Post("/search/rebuild", s.handleSearchRebuild)
		r.Get("/review/summary", s.handleReviewSummary)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r = r.WithContext(logger.ContextWithLogger(r.Context(), s.log))
		next.ServeHTTP(w, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// handleError maps domain error codes to HTTP statuses.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		s.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, domain.CodeInternal, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch de.Code {
	case domain.CodeBadRequest:
		status = http.StatusBadRequest
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeIOError:
		status = http.StatusUnprocessableEntity
	case domain.CodeDBError, domain.CodeInternal:
		s.log.Error("storage error", zap.Error(err))
		writeError(w, status, de.Code, "internal error")
		return
	}

	writeError(w, status, de.Code, de.Message)
}

// decode parses and validates a JSON request body.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, domain.CodeBadRequest,
				fmt.Sprintf("field %s failed %s validation", verrs[0].Field(), verrs[0].Tag()))
			return false
		}
		writeError(w, http.StatusBadRequest, domain.CodeBadRequest, err.Error())
		return false
	}
	return true
}
