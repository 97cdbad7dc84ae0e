package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/pledge/pkg/logging"
)

var flagVerbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pledgectl",
		Short:        "Utilities for the pledge commitment and settlement server",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if flagVerbose {
				level = slog.LevelDebug
			}
			logging.Setup(cmd.ErrOrStderr(), level, logging.FormatText)
		},
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log store activity")

	root.AddCommand(newTokenCmd(), newDemoCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
