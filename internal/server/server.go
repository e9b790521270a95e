// Package server exposes the assignment store, reports, and snapshot
// operations over HTTP.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ngcde/assignment-tracker/internal/assignment"
	"github.com/ngcde/assignment-tracker/internal/config"
	"github.com/ngcde/assignment-tracker/internal/eventbus"
	"github.com/ngcde/assignment-tracker/internal/snapshot"
	"github.com/ngcde/assignment-tracker/pkg/cerr"
	"github.com/ngcde/assignment-tracker/pkg/clog"
)

type Server struct {
	server   *http.Server
	env      *config.BaseEnv
	store    *assignment.Store
	archiver *snapshot.Archiver
	bus      *eventbus.Bus
}

func NewServer(
	env *config.BaseEnv,
	store *assignment.Store,
	archiver *snapshot.Archiver,
	bus *eventbus.Bus,
) *Server {
	return &Server{
		env:      env,
		store:    store,
		archiver: archiver,
		bus:      bus,
	}
}

// Handler builds the full request handler, CORS included.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewConvertErrorChiMiddleware(),
		)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})

		r.Post("/assignments", s.handleCreateAssignment)
		r.Get("/assignments", s.handleListAssignments)
		r.Get("/assignments/{id}", s.handleGetAssignment)
		r.Patch("/assignments/{id}", s.handleUpdateAssignment)

		r.Get("/reports/dashboard", s.handleDashboard)
		r.Get("/reports/analytics", s.handleAnalytics)
		r.Get("/reports/engineers", s.handleEngineers)
		r.Get("/reports/engineers/{role}", s.handleEngineerDetail)

		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/snapshot/export", s.handleSnapshotExport)
		r.Post("/snapshot/import", s.handleSnapshotImport)
		r.Get("/snapshot/archives", s.handleSnapshotArchives)
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(mux)
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests via http.Server.BaseContext, so
// cancelling it (e.g. on a shutdown signal) reaches every in-flight handler.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     h2c.NewHandler(s.Handler(), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
