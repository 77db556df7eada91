package model

import "time"

// Run is a persisted record of one batch evaluation call.
type Run struct {
	ID              string    `json:"id"`
	ProblemID       string    `json:"problem_id"`
	ChromosomeCount int       `json:"chromosome_count"`
	FeasibleCount   int       `json:"feasible_count"`
	BestFitness     Fitness   `json:"best_fitness"`
	ElapsedMS       int64     `json:"elapsed_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// RunResult is one chromosome's outcome within a run. Index is the position
// of the chromosome in the batch; results are always stored and returned in
// input order.
type RunResult struct {
	RunID   string  `json:"run_id"`
	Index   int     `json:"index"`
	Fitness Fitness `json:"fitness"`
	Verdict Verdict `json:"verdict"`
}
