// Package server provides the HTTP server for the mudra classifier.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

const shutdownTimeout = 5 * time.Second

// LatestDecision exposes the most recent pipeline decision.
type LatestDecision interface {
	LastDecision() (gesture.Decision, bool)
}

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	StaticDir string
	Store     *store.Store
	Arbiter   *gesture.Arbiter
	Camera    capture.Camera
	Latest    LatestDecision
	Labels    *LabelHub
	Toggle    api.Toggle
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Arbiter != nil {
		s.mux.Handle("/api/classify", api.NewClassifyHandler(s.config.Arbiter, s.config.Store))
	}

	if s.config.Store != nil {
		classifications := api.NewClassificationHandler(s.config.Store)
		s.mux.Handle("/api/classifications", classifications)
		s.mux.Handle("/api/classifications/", classifications)
		s.mux.Handle("/api/stats", api.NewStatsHandler(s.config.Store))
	}

	if s.config.Toggle != nil {
		s.mux.Handle("/api/detection", api.NewDetectionHandler(s.config.Toggle))
	}

	if s.config.Labels != nil {
		s.mux.Handle("/api/labels", s.config.Labels)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Latest))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if a := s.config.Arbiter; a != nil {
		response["model"] = a.ModelState().String()
		response["strategy"] = string(a.Strategy())
	}
	if s.config.Latest != nil {
		if d, ok := s.config.Latest.LastDecision(); ok {
			response["last_label"] = string(d.Label)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
