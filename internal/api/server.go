// Package api exposes summarization over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/jobs"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/summarize"
)

// StatsSource is the instrumented completion client behind the pipeline.
type StatsSource interface {
	Name() string
	Stats() *llm.Stats
}

// Server is the HTTP API server for docsum.
type Server struct {
	router       chi.Router
	orchestrator *jobs.Orchestrator
	pipeline     *summarize.Pipeline
	llm          StatsSource
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *jobs.Orchestrator, p *summarize.Pipeline, src StatsSource, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		pipeline:     p,
		llm:          src,
		log:          log,
		cfg:          cfg,
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
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.ServerAPIKey, s.log))

		r.Post("/api/summarize", s.handleSummarize)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/ask", s.handleAsk)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
