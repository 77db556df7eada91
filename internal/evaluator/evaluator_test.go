package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/me/goplan/internal/logging"
	"github.com/me/goplan/internal/resources"
	"github.com/me/goplan/internal/workgraph"
	"github.com/me/goplan/pkg/model"
)

func buildEvaluator(t require.TestingT, cfg Config) (*Evaluator, *workgraph.Graph, *resources.Pool) {
	g, err := workgraph.Build([]model.WorkDef{
		{ID: "site", Duration: 2, Requires: map[string]int{"digger": 2}},
		{ID: "found", Duration: 3, Requires: map[string]int{"mason": 2}, Predecessors: []string{"site"}},
		{ID: "walls", Duration: 4, Requires: map[string]int{"mason": 3}, Predecessors: []string{"found"}},
		{ID: "roof", Duration: 2, Requires: map[string]int{"mason": 1, "digger": 1}, Predecessors: []string{"walls"}},
		{ID: "fence", Duration: 3, Requires: map[string]int{"digger": 1}},
	}, [][]string{{"found", "walls"}})
	require.NoError(t, err)

	pool, err := resources.Compile(g, []resources.CompileInput{
		{ID: "acme", Workers: map[string]int{"digger": 3, "mason": 3}},
		{ID: "budget", Workers: map[string]int{"digger": 2, "mason": 2}},
	})
	require.NoError(t, err)

	return New(g, pool, cfg, logging.Discard()), g, pool
}

// requiredChromosome assigns every work its exact requirements on the given
// contractor, ordered by a list of work ids.
func requiredChromosome(g *workgraph.Graph, contractor int, orderIDs ...string) model.Chromosome {
	n := g.WorkCount()
	ch := model.Chromosome{
		Order:       make([]int, len(orderIDs)),
		Contractors: make([]int, n),
		Resources:   make([][]int, n),
	}
	for i, id := range orderIDs {
		w, _ := g.WorkIndex(id)
		ch.Order[i] = w
	}
	for w := 0; w < n; w++ {
		ch.Contractors[w] = contractor
		row := make([]int, g.WorkerTypeCount())
		copy(row, g.Requires(w))
		ch.Resources[w] = row
	}
	return ch
}

func TestEvaluateBatchKeepsOrder(t *testing.T) {
	e, g, _ := buildEvaluator(t, DefaultConfig())

	good := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	reversed := requiredChromosome(g, 0, "roof", "walls", "found", "fence", "site")
	starved := requiredChromosome(g, 1, "site", "fence", "found", "walls", "roof")
	// budget has only 2 masons; walls requires 3.

	outcomes, err := e.EvaluateBatchOutcomes(context.Background(),
		[]model.Chromosome{good, reversed, starved, good})
	require.NoError(t, err)
	require.Len(t, outcomes, 4)

	require.Equal(t, model.VerdictFeasible, outcomes[0].Verdict)
	require.Less(t, outcomes[0].Fitness, model.InfeasibleFitness)

	require.Equal(t, model.VerdictPrecedenceViolation, outcomes[1].Verdict)
	require.Equal(t, model.InfeasibleFitness, outcomes[1].Fitness)

	require.Equal(t, model.VerdictOverAllocation, outcomes[2].Verdict)
	require.Equal(t, model.InfeasibleFitness, outcomes[2].Fitness)

	require.Equal(t, outcomes[0], outcomes[3], "identical chromosomes must score identically")
}

func TestEvaluateBatchFitnessProjection(t *testing.T) {
	e, g, _ := buildEvaluator(t, DefaultConfig())

	good := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	bad := requiredChromosome(g, 0, "roof", "site", "fence", "found", "walls")

	fitness, err := e.EvaluateBatch(context.Background(), []model.Chromosome{good, bad})
	require.NoError(t, err)
	require.Len(t, fitness, 2)
	require.Less(t, fitness[0], model.InfeasibleFitness)
	require.Equal(t, model.InfeasibleFitness, fitness[1])
}

func TestEvaluateBatchCostBudget(t *testing.T) {
	e, g, _ := buildEvaluator(t, Config{MaxBatchCost: 10})

	ch := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	_, err := e.EvaluateBatchOutcomes(context.Background(), []model.Chromosome{ch})
	require.ErrorIs(t, err, ErrBatchTooLarge)

	// A generous budget admits the same batch.
	e, _, _ = buildEvaluator(t, Config{MaxBatchCost: 1_000_000})
	_, err = e.EvaluateBatchOutcomes(context.Background(), []model.Chromosome{ch})
	require.NoError(t, err)
}

func TestEvaluateBatchFatalOnCorruptInput(t *testing.T) {
	e, g, _ := buildEvaluator(t, DefaultConfig())

	good := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	corrupt := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	corrupt.Contractors[0] = 42

	_, err := e.EvaluateBatchOutcomes(context.Background(),
		[]model.Chromosome{good, corrupt})
	require.ErrorIs(t, err, resources.ErrUnknownContractor)
}

func TestEvaluateBatchHonorsCancellation(t *testing.T) {
	e, g, _ := buildEvaluator(t, Config{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := requiredChromosome(g, 0, "site", "fence", "found", "walls", "roof")
	_, err := e.EvaluateBatchOutcomes(ctx, []model.Chromosome{ch, ch, ch})
	require.ErrorIs(t, err, context.Canceled)
}

// TestParallelMatchesSequential drives randomly generated chromosome batches
// through a single-worker and a multi-worker evaluator and demands
// bit-identical outcomes.
func TestParallelMatchesSequential(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sequential, g, pool := buildEvaluator(t, Config{Workers: 1})
		parallel, _, _ := buildEvaluator(t, Config{Workers: 8})

		n := g.WorkCount()
		chGen := rapid.Custom(func(t *rapid.T) model.Chromosome {
			ch := model.Chromosome{
				Order:       rapid.SliceOfNDistinct(rapid.IntRange(0, n-1), n, n, rapid.ID[int]).Draw(t, "order"),
				Contractors: make([]int, n),
				Resources:   make([][]int, n),
			}
			for w := 0; w < n; w++ {
				ch.Contractors[w] = rapid.IntRange(0, pool.Count()-1).Draw(t, "contractor")
				row := make([]int, g.WorkerTypeCount())
				for ti := range row {
					row[ti] = rapid.IntRange(0, 4).Draw(t, "demand")
				}
				ch.Resources[w] = row
			}
			return ch
		})
		batch := rapid.SliceOfN(chGen, 1, 32).Draw(t, "batch")

		want, err := sequential.EvaluateBatchOutcomes(context.Background(), batch)
		require.NoError(t, err)
		got, err := parallel.EvaluateBatchOutcomes(context.Background(), batch)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}
