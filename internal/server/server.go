// Package server exposes the cached content over HTTP: document, navigation,
// snapshot, and version reads, refresh triggers, and webhook reception.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docserve/internal/config"
	dserr "git.home.luguber.info/inful/docserve/internal/errors"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/refresh"
)

// Server wires the refresh service behind the HTTP API.
type Server struct {
	httpServer   *http.Server
	cfg          *config.Config
	service      *refresh.Service
	errorAdapter *dserr.HTTPErrorAdapter
	registry     *prometheus.Registry
	mchain       func(http.Handler) http.Handler
}

// New constructs the server. registry may be nil to disable /metrics.
func New(cfg *config.Config, service *refresh.Service, registry *prometheus.Registry) *Server {
	s := &Server{
		cfg:          cfg,
		service:      service,
		errorAdapter: dserr.NewHTTPErrorAdapter(slog.Default()),
		registry:     registry,
	}
	s.mchain = chain(slog.Default(), s.errorAdapter)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.mchain(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{project}/versions", s.handleVersions)
	mux.HandleFunc("GET /api/projects/{project}/{version}/nav", s.handleNavigation)
	mux.HandleFunc("GET /api/projects/{project}/{version}/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/projects/{project}/{version}/doc/{slug...}", s.handleDocument)
	mux.HandleFunc("POST /api/projects/{project}/{version}/refresh", s.handleRefresh)
	mux.HandleFunc("DELETE /api/projects/{project}/{version}", s.handleInvalidate)
	mux.HandleFunc("POST /webhooks/github", s.handleGitHubWebhook)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.registry))
	}

	return mux
}

// Start begins serving and blocks until the listener fails or ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
