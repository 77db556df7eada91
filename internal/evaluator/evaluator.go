// Package evaluator scores batches of chromosomes against the shared,
// immutable problem data. Evaluation of one chromosome is a pure function
// of the chromosome and the compiled graph/pool, so the batch is an
// embarrassingly parallel map: each task owns a private timeline and writes
// only its own result slot.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/simulator"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured cost
// budget. The budget bounds total simulated volume up front instead of
// interrupting in-flight simulations, which keeps every evaluation
// deterministic.
var ErrBatchTooLarge = errors.New("batch exceeds configured cost budget")

// Config holds evaluator configuration.
type Config struct {
	// Workers caps concurrent evaluations. Zero or negative means one per
	// available CPU.
	Workers int
	// MaxBatchCost bounds chromosomes x works x contractors x worker types
	// per batch call. Zero means unlimited.
	MaxBatchCost int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Workers: 0, MaxBatchCost: 0}
}

// Outcome is the per-chromosome result of a batch call.
type Outcome struct {
	Fitness model.Fitness
	Verdict model.Verdict
}

// Evaluator scores chromosomes against one compiled problem. The graph and
// pool are treated as immutable snapshots for the Evaluator's lifetime; no
// state is carried between calls.
type Evaluator struct {
	graph  *workgraph.Graph
	pool   *resources.Pool
	config Config
	logger *slog.Logger
}

// New creates an Evaluator over the shared problem data.
func New(g *workgraph.Graph, pool *resources.Pool, cfg Config, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		graph:  g,
		pool:   pool,
		config: cfg,
		logger: logger.With("component", "evaluator"),
	}
}

// Evaluate scores a single chromosome.
func (e *Evaluator) Evaluate(ch *model.Chromosome) (Outcome, error) {
	res, err := simulator.Simulate(e.graph, e.pool, ch)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Fitness: res.Fitness(), Verdict: res.Verdict}, nil
}

// EvaluateBatch scores every chromosome and returns one fitness value per
// chromosome, index-aligned with the input. Infeasible chromosomes degrade
// to the sentinel fitness and never abort the batch; only corrupt input
// (malformed gene shape, unknown contractor) fails the whole call.
func (e *Evaluator) EvaluateBatch(ctx context.Context, chs []model.Chromosome) ([]model.Fitness, error) {
	outcomes, err := e.EvaluateBatchOutcomes(ctx, chs)
	if err != nil {
		return nil, err
	}
	fitness := make([]model.Fitness, len(outcomes))
	for i, o := range outcomes {
		fitness[i] = o.Fitness
	}
	return fitness, nil
}

// EvaluateBatchOutcomes is EvaluateBatch with per-chromosome verdicts kept.
// Concurrent execution is bit-identical to sequential: tasks share nothing
// but the read-only problem data, and slot i is written only by task i.
func (e *Evaluator) EvaluateBatchOutcomes(ctx context.Context, chs []model.Chromosome) ([]Outcome, error) {
	if err := e.checkBudget(chs); err != nil {
		return nil, err
	}

	workers := e.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	started := time.Now()
	outcomes := make([]Outcome, len(chs))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := range chs {
		grp.Go(func() error {
			// Cancellation is honored between evaluations, never inside one;
			// a single simulation is short and bounded by work count.
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := e.Evaluate(&chs[i])
			if err != nil {
				return fmt.Errorf("chromosome %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("batch evaluated",
		"chromosomes", len(chs),
		"workers", workers,
		"elapsed", time.Since(started))
	return outcomes, nil
}

func (e *Evaluator) checkBudget(chs []model.Chromosome) error {
	if e.config.MaxBatchCost <= 0 {
		return nil
	}
	cost := int64(len(chs)) *
		int64(e.graph.WorkCount()) *
		int64(e.pool.Count()) *
		int64(max(e.graph.WorkerTypeCount(), 1))
	if cost > e.config.MaxBatchCost {
		return fmt.Errorf("%w: cost %d > budget %d", ErrBatchTooLarge, cost, e.config.MaxBatchCost)
	}
	return nil
}
