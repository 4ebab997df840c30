// Package cli implements the tickos command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"tickos/internal/logging"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the tickos CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tickos",
		Short: "tickos - a tick-driven process scheduler",
		Long:  "tickos boots a single-CPU, Linux 0.11 style scheduler with a demo workload on a host window or headless.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newVersionCmd(),
	)

	return root
}
