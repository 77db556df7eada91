package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/goplan/internal/config"
	"github.com/me/goplan/internal/evaluator"
	"github.com/me/goplan/internal/loader"
	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/store"
	"github.com/me/goplan/internal/workgraph"
)

// Server is the GoPlan REST API server: the host boundary through which an
// external GA/orchestration layer registers problems and submits batches of
// chromosomes for evaluation.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServerConfig
	startTime time.Time
	loader    *loader.Loader
	store     store.Store

	// Compiled problem snapshots, built once per problem and shared
	// read-only across all concurrent evaluate calls.
	mu       sync.RWMutex
	compiled map[string]*compiledProblem
}

// compiledProblem is the immutable snapshot an evaluate call runs against.
type compiledProblem struct {
	graph *workgraph.Graph
	pool  *resources.Pool
	eval  *evaluator.Evaluator
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		loader:    loader.New(),
		store:     st,
		compiled:  make(map[string]*compiledProblem),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		// Health
		r.Get("/health", s.handleHealth)

		// Problems
		r.Route("/problems", func(r chi.Router) {
			r.Get("/", s.handleListProblems)
			r.Post("/", s.handleCreateProblem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetProblem)
				r.Delete("/", s.handleDeleteProblem)
				r.Post("/evaluate", s.handleEvaluate)
				r.Get("/runs", s.handleListRuns)
			})
		})

		// Runs
		r.Route("/runs", func(r chi.Router) {
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Get("/results", s.handleGetRunResults)
			})
		})
	})
}
