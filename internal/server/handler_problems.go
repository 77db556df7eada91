package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/goplan/internal/loader"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

// handleCreateProblem registers a problem definition. The definition is
// compiled immediately: malformed graphs and inconsistent contractors are
// rejected here, once, instead of failing every later evaluate call.
func (s *Server) handleCreateProblem(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "read body: " + err.Error(),
		})
		return
	}

	def, err := s.loader.DecodeProblem(body)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError(err.Error(), loader.FieldErrors(err)...))
		return
	}

	graph, pool, err := loader.Compile(def)
	if err != nil {
		status := http.StatusUnprocessableEntity
		code := model.ErrMalformed
		if !errors.Is(err, workgraph.ErrMalformedGraph) {
			code = model.ErrValidation
		}
		respondError(w, reqID, status, &model.APIError{Code: code, Message: err.Error()})
		return
	}

	name := def.Name
	if name == "" {
		name = "unnamed-problem"
	}
	p := &model.Problem{
		ID:              "prob_" + uuid.New().String(),
		Name:            name,
		Definition:      *def,
		WorkCount:       graph.WorkCount(),
		ContractorCount: pool.Count(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.CreateProblem(r.Context(), p); err != nil {
		s.logger.Error("create problem", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "store problem",
		})
		return
	}

	s.cacheCompiled(p.ID, graph, pool)
	s.logger.Info("problem registered", "problem_id", p.ID, "works", p.WorkCount, "contractors", p.ContractorCount)
	respondCreated(w, reqID, p)
}

func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	p, err := s.store.GetProblem(r.Context(), id)
	if err != nil {
		s.logger.Error("get problem", "problem_id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "load problem",
		})
		return
	}
	if p == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("problem", id))
		return
	}
	respondOK(w, reqID, p)
}

func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	opts := listOptionsFromQuery(r)

	problems, total, err := s.store.ListProblems(r.Context(), opts)
	if err != nil {
		s.logger.Error("list problems", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: "list problems",
		})
		return
	}
	respondList(w, reqID, problems, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(problems) < total,
	})
}

func (s *Server) handleDeleteProblem(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteProblem(r.Context(), id); err != nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("problem", id))
		return
	}
	s.dropCompiled(id)
	respondOK(w, reqID, map[string]string{"deleted": id})
}
