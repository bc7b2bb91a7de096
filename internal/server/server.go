// Package server exposes the hub over a JSON HTTP API: the strategy
// panel, the execution log, and the bug center all map onto routes
// here. Handlers stay thin; every mutation goes through the session.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"qahub/internal/logging"
	"qahub/internal/session"
)

// Server wires the session into an http.Server.
type Server struct {
	session *session.State
	http    *http.Server
}

// Options configures the HTTP surface.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New builds a Server around a session.
func New(state *session.State, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8433"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}

	s := &Server{session: state}
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      withRequestID(s.routes()),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully with a short drain window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Server("shutting down")
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/save", s.handleSaveAll)

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("GET /api/projects/{name}", s.handleGetProject)
	mux.HandleFunc("DELETE /api/projects/{name}", s.handleDeleteProject)
	mux.HandleFunc("POST /api/projects/{name}/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/projects/{name}/strategy", s.handleStrategy)
	mux.HandleFunc("GET /api/projects/{name}/bugs", s.handleBugs)
	mux.HandleFunc("GET /api/projects/{name}/export", s.handleExport)

	mux.HandleFunc("PATCH /api/projects/{name}/cases/{id}", s.handleEditCase)
	mux.HandleFunc("PUT /api/projects/{name}/cases/{id}/status", s.handleSetStatus)
	mux.HandleFunc("PUT /api/projects/{name}/cases/{id}/evidence", s.handleEvidence)
	mux.HandleFunc("POST /api/projects/{name}/cases/{id}/draft", s.handleDraftBug)
	mux.HandleFunc("GET /api/projects/{name}/cases/{id}/mailto", s.handleMailto)

	return mux
}
