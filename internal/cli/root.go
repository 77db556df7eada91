// Package cli implements the goplan command line tool: offline validation
// and evaluation of problems and chromosome batches, without a server.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/goplan/internal/logging"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the goplan CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "goplan",
		Short: "GoPlan — chromosome evaluator for project scheduling",
		Long:  "GoPlan validates scheduling problems and scores chromosome batches against them.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newValidateCmd(),
		newEvaluateCmd(),
	)

	return root
}
