package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/doccheck/internal/config"
	"github.com/dgallion1/doccheck/internal/pipeline"
	"github.com/dgallion1/doccheck/internal/semantic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checks is the job pipeline as seen by the HTTP layer.
type Checks interface {
	Submit(job *pipeline.Job) error
	GetJob(id string) *pipeline.Job
	ListJobs() []*pipeline.Job
	DeleteJob(id string) (bool, error)
}

// LLMInfo exposes the semantic matcher's model and call statistics.
type LLMInfo interface {
	Model() string
	Stats() *semantic.Stats
}

// Server is the HTTP API server for doccheck.
type Server struct {
	router chi.Router
	checks Checks
	llm    LLMInfo
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil when no
// model is configured.
func NewServer(checks Checks, llm LLMInfo, log *slog.Logger, cfg config.Config) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		checks: checks,
		llm:    llm,
		log:    log,
		cfg:    cfg,
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
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/check", s.handleCheck)
		r.Post("/api/check/batch", s.handleBatchCheck)
		r.Get("/api/check", s.handleListChecks)
		r.Get("/api/check/{jobID}/status", s.handleCheckStatus)
		r.Get("/api/check/{jobID}/result", s.handleCheckResult)
		r.Delete("/api/check/{jobID}", s.handleDeleteCheck)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
