package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/goplan/internal/evaluator"
	"github.com/me/goplan/internal/loader"
	"github.com/me/goplan/pkg/model"
)

// evaluateRequest is a batch of chromosomes in external form.
type evaluateRequest struct {
	Chromosomes []model.ChromosomeDef `json:"chromosomes"`
}

// evaluateResponse is index-aligned with the request: fitness[i] and
// verdicts[i] belong to chromosomes[i].
type evaluateResponse struct {
	RunID    string          `json:"run_id"`
	Fitness  []model.Fitness `json:"fitness"`
	Verdicts []model.Verdict `json:"verdicts"`
	Sentinel model.Fitness   `json:"sentinel"`
}

// handleEvaluate scores a batch of chromosomes against a registered
// problem. Infeasible chromosomes come back with the sentinel fitness;
// only corrupt input fails the call.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	problemID := chi.URLParam(r, "id")

	cp, apiErr := s.compiledFor(r.Context(), problemID)
	if apiErr != nil {
		status := http.StatusInternalServerError
		if apiErr.Code == model.ErrNotFound {
			status = http.StatusNotFound
		}
		respondError(w, reqID, status, apiErr)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<20)).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "Invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.Chromosomes) == 0 {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("chromosomes must not be empty"))
		return
	}

	chs := make([]model.Chromosome, len(req.Chromosomes))
	for i := range req.Chromosomes {
		ch, err := loader.CompileChromosome(&req.Chromosomes[i], cp.graph, cp.pool)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError(err.Error()))
			return
		}
		chs[i] = *ch
	}

	started := time.Now()
	outcomes, err := cp.eval.EvaluateBatchOutcomes(r.Context(), chs)
	if err != nil {
		if errors.Is(err, evaluator.ErrBatchTooLarge) {
			respondError(w, reqID, http.StatusRequestEntityTooLarge, &model.APIError{
				Code:    model.ErrTooLarge,
				Message: err.Error(),
			})
			return
		}
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: err.Error(),
		})
		return
	}
	elapsed := time.Since(started)

	run := &model.Run{
		ID:              "run_" + uuid.New().String(),
		ProblemID:       problemID,
		ChromosomeCount: len(outcomes),
		BestFitness:     model.InfeasibleFitness,
		ElapsedMS:       elapsed.Milliseconds(),
		CreatedAt:       time.Now().UTC(),
	}
	results := make([]model.RunResult, len(outcomes))
	fitness := make([]model.Fitness, len(outcomes))
	verdicts := make([]model.Verdict, len(outcomes))
	for i, o := range outcomes {
		fitness[i] = o.Fitness
		verdicts[i] = o.Verdict
		results[i] = model.RunResult{RunID: run.ID, Index: i, Fitness: o.Fitness, Verdict: o.Verdict}
		if o.Verdict.IsFeasible() {
			run.FeasibleCount++
			if o.Fitness < run.BestFitness {
				run.BestFitness = o.Fitness
			}
		}
	}

	if err := s.store.CreateRun(r.Context(), run, results); err != nil {
		// The evaluation itself succeeded; log and return it anyway.
		s.logger.Error("persist run", "run_id", run.ID, "error", err)
	}

	s.logger.Info("batch evaluated",
		"problem_id", problemID,
		"run_id", run.ID,
		"chromosomes", run.ChromosomeCount,
		"feasible", run.FeasibleCount,
		"elapsed", elapsed.String())

	respondOK(w, reqID, evaluateResponse{
		RunID:    run.ID,
		Fitness:  fitness,
		Verdicts: verdicts,
		Sentinel: model.InfeasibleFitness,
	})
}

// compiledFor returns the immutable compiled snapshot for a problem,
// building and caching it on first use.
func (s *Server) compiledFor(ctx context.Context, problemID string) (*compiledProblem, *model.APIError) {
	s.mu.RLock()
	cp, ok := s.compiled[problemID]
	s.mu.RUnlock()
	if ok {
		return cp, nil
	}

	p, err := s.store.GetProblem(ctx, problemID)
	if err != nil {
		s.logger.Error("get problem", "problem_id", problemID, "error", err)
		return nil, &model.APIError{Code: model.ErrInternal, Message: "load problem"}
	}
	if p == nil {
		return nil, model.NewNotFoundError("problem", problemID)
	}

	graph, pool, err := loader.Compile(&p.Definition)
	if err != nil {
		// A stored problem that no longer compiles indicates corruption.
		s.logger.Error("compile stored problem", "problem_id", problemID, "error", err)
		return nil, &model.APIError{Code: model.ErrMalformed, Message: err.Error()}
	}
	return s.cacheCompiled(problemID, graph, pool), nil
}
