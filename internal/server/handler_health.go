package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	GoVersion       string `json:"go_version"`
	Uptime          string `json:"uptime"`
	CachedProblems  int    `json:"cached_problems"`
	EvaluateWorkers int    `json:"evaluate_workers"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	s.mu.RLock()
	cached := len(s.compiled)
	s.mu.RUnlock()

	workers := s.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	respondOK(w, reqID, healthResponse{
		Status:          "healthy",
		Version:         "0.1.0",
		GoVersion:       runtime.Version(),
		Uptime:          time.Since(s.startTime).Round(time.Second).String(),
		CachedProblems:  cached,
		EvaluateWorkers: workers,
	})
}
