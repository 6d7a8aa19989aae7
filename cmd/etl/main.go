// Command etl loads the streaming platform batch into the relational and
// document stores, verifies it and exports the merged analysis table.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:           "etl",
	Short:         "Batch ETL for the video streaming dataset",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("etl failed")
		stop()
		os.Exit(1)
	}
}
