package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/goplan/internal/loader"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <problem-file>",
		Short: "Validate and compile a problem definition",
		Long: `Parses a problem definition (YAML or JSON), checks its structure, and
compiles the work graph and contractor pool. Exits non-zero when the
definition is malformed: unknown predecessors, dependency cycles, invalid
inseparable chains, or inconsistent contractors.`,
		Args: cobra.ExactArgs(1),
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

			name := def.Name
			if name == "" {
				name = args[0]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			fmt.Fprintf(cmd.OutOrStdout(), "  works:        %d\n", g.WorkCount())
			fmt.Fprintf(cmd.OutOrStdout(), "  worker types: %d\n", g.WorkerTypeCount())
			fmt.Fprintf(cmd.OutOrStdout(), "  contractors:  %d\n", pool.Count())
			chains := 0
			for w := 0; w < g.WorkCount(); w++ {
				if len(g.ChainMembers(w)) > 0 {
					chains++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  chains:       %d\n", chains)
			return nil
		},
	}
}
