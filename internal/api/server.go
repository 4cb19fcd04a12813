// Package api is the JSON HTTP interface to projects, sections, test cases,
// runs and document imports.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/checkmate/internal/auth"
	"github.com/dgallion1/checkmate/internal/config"
	"github.com/dgallion1/checkmate/internal/importer"
	"github.com/dgallion1/checkmate/internal/store"
)

// Server is the HTTP API server for checkmate.
type Server struct {
	router   chi.Router
	store    *store.Store
	importer *importer.Orchestrator
	sessions *auth.Sessions
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(st *store.Store, imp *importer.Orchestrator, sess *auth.Sessions, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:    st,
		importer: imp,
		sessions: sess,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(s.store, s.sessions, s.log))

		r.Get("/auth/session", s.handleWhoAmI)
		r.Post("/auth/session", s.handleCreateSession)
		r.Delete("/auth/session", s.handleDeleteSession)

		r.Get("/orgs", s.handleListOrgs)
		r.Post("/orgs", s.handleCreateOrg)
		r.Get("/orgs/{orgID}/projects", s.handleListProjects)
		r.Post("/orgs/{orgID}/projects", s.handleCreateProject)

		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/", s.handleGetProject)
			r.Put("/", s.handleUpdateProject)
			r.Delete("/", s.handleDeleteProject)

			r.Get("/sections", s.handleListSections)
			r.Post("/sections", s.handleCreateSection)
			r.Get("/sections/tree", s.handleSectionTree)
			r.Post("/sections/select", s.handleSelectSection)

			r.Get("/tests", s.handleListTests)
			r.Post("/tests", s.handleCreateTest)

			r.Get("/runs", s.handleListRuns)
			r.Post("/runs", s.handleCreateRun)

			r.Post("/import", s.handleImport)
			r.Post("/import/batch", s.handleBatchImport)
		})

		r.Put("/sections/{sectionID}", s.handleUpdateSection)
		r.Delete("/sections/{sectionID}", s.handleDeleteSection)

		r.Get("/tests/{testID}", s.handleGetTest)
		r.Put("/tests/{testID}", s.handleUpdateTest)
		r.Delete("/tests/{testID}", s.handleDeleteTest)

		r.Get("/runs/{runID}", s.handleGetRun)
		r.Post("/runs/{runID}/tests", s.handleAddRunTests)
		r.Put("/runs/{runID}/tests/{testID}", s.handleUpdateRunTest)
		r.Post("/runs/{runID}/lock", s.handleLockRun)

		r.Get("/import/{jobID}/status", s.handleImportStatus)
		r.Get("/stats/imports", s.handleImportStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
