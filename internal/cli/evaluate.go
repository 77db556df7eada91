package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/goplan/internal/evaluator"
	"github.com/me/goplan/internal/loader"
	"github.com/me/goplan/pkg/model"
)

type evaluateOutput struct {
	Fitness  []model.Fitness `json:"fitness"`
	Verdicts []model.Verdict `json:"verdicts"`
	Sentinel model.Fitness   `json:"sentinel"`
}

func newEvaluateCmd() *cobra.Command {
	var workers int
	var maxBatchCost int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "evaluate <problem-file> <chromosomes-file>",
		Short: "Score a batch of chromosomes against a problem",
		Long: `Compiles the problem, decodes the chromosome list, and evaluates every
chromosome. Infeasible chromosomes are reported with the sentinel fitness
and a verdict naming the violation; only corrupt input fails the command.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loader.New()
			def, err := l.LoadProblem(args[0])
			if err != nil {
				return err
			}
			g, pool, err := loader.Compile(def)
			if err != nil {
				return err
			}
			chs, err := l.LoadChromosomes(args[1], g, pool)
			if err != nil {
				return err
			}

			eval := evaluator.New(g, pool, evaluator.Config{
				Workers:      workers,
				MaxBatchCost: maxBatchCost,
			}, logger)
			outcomes, err := eval.EvaluateBatchOutcomes(context.Background(), chs)
			if err != nil {
				return err
			}

			if asJSON {
				out := evaluateOutput{
					Fitness:  make([]model.Fitness, len(outcomes)),
					Verdicts: make([]model.Verdict, len(outcomes)),
					Sentinel: model.InfeasibleFitness,
				}
				for i, o := range outcomes {
					out.Fitness[i] = o.Fitness
					out.Verdicts[i] = o.Verdict
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			best := model.InfeasibleFitness
			feasible := 0
			for i, o := range outcomes {
				if o.Verdict.IsFeasible() {
					feasible++
					if o.Fitness < best {
						best = o.Fitness
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%4d  %10d  %s\n", i, o.Fitness, o.Verdict)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%4d  %10s  %s\n", i, "-", o.Verdict)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "feasible %d/%d", feasible, len(outcomes))
			if feasible > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", best makespan %d", best)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent evaluations (0 = one per CPU)")
	cmd.Flags().Int64Var(&maxBatchCost, "max-batch-cost", 0, "Batch cost budget (0 = unbounded)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")

	return cmd
}
