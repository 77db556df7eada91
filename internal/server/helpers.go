package server

import (
	"net/http"
	"strconv"

	"github.com/me/goplan/internal/evaluator"
	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

// cacheCompiled stores the compiled snapshot for a problem and wires an
// evaluator to it, replacing any previous snapshot.
func (s *Server) cacheCompiled(problemID string, g *workgraph.Graph, pool *resources.Pool) *compiledProblem {
	cfg := evaluator.DefaultConfig()
	if s.config.Workers > 0 {
		cfg.Workers = s.config.Workers
	}
	if s.config.MaxBatchCost > 0 {
		cfg.MaxBatchCost = s.config.MaxBatchCost
	}
	cp := &compiledProblem{
		graph: g,
		pool:  pool,
		eval:  evaluator.New(g, pool, cfg, s.logger),
	}
	s.mu.Lock()
	s.compiled[problemID] = cp
	s.mu.Unlock()
	return cp
}

// dropCompiled evicts a problem's compiled snapshot, if present.
func (s *Server) dropCompiled(problemID string) {
	s.mu.Lock()
	delete(s.compiled, problemID)
	s.mu.Unlock()
}

// listOptionsFromQuery parses limit/offset query parameters, falling back
// to defaults and clamping out-of-range values.
func listOptionsFromQuery(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Clamp()
	return opts
}
