package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/docstore"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/service"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

// progressEvery is how often, in rows, a batch progress line is logged.
const progressEvery = 5000

var loadFlags struct {
	skipDocs  bool
	batchSize int
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace both stores with the current source files and verify",
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().BoolVar(&loadFlags.skipDocs, "skip-docs", false, "Skip the MongoDB load")
	loadCmd.Flags().IntVar(&loadFlags.batchSize, "batch-size", 0, "Viewing session rows per INSERT (default LOAD_BATCH_SIZE or 1000)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// fail on missing files before any connection is opened
	if err := source.CheckInputs(cfg.Sources.All()...); err != nil {
		return err
	}

	db, dialect, err := database.OpenConfig(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := service.Deps{SQL: db, Dialect: dialect, Publisher: service.NewAMQPPublisher(cfg.RabbitURL)}
	if !loadFlags.skipDocs {
		store, err := docstore.Open(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()
		deps.Docs = store
	}
	if rdb := config.NewRedisClient(ctx, config.LoadRedisConfig()); rdb != nil {
		defer rdb.Close()
		deps.Locker = service.NewRedisLocker(rdb, 0)
	}

	batch := cfg.BatchSize
	if loadFlags.batchSize > 0 {
		batch = loadFlags.batchSize
	}
	p := service.NewPipeline(deps, service.Options{
		Sources:   cfg.Sources,
		BatchSize: batch,
		Progress: func(table string, done, total int) {
			if done%progressEvery == 0 || done == total {
				logging.Info().Str("table", table).Int("done", done).Int("total", total).Msg("progress")
			}
		},
	})
	sum, runErr := p.Run(ctx)
	if len(sum.Tables) > 0 {
		printSummary(sum)
	}
	return runErr
}

func printSummary(sum service.RunSummary) {
	fmt.Fprintf(os.Stdout, "run %s\n", sum.RunID)
	for _, t := range sum.Tables {
		status := "ok"
		if t.Error != "" {
			status = "FAILED: " + t.Error
		}
		fmt.Fprintf(os.Stdout, "  %-10s %-17s %7d rows  %5dms  %s\n", t.Store, t.Table, t.Rows, t.DurationMS, status)
	}
	for _, name := range []string{docstore.CollUsers, docstore.CollContent, docstore.CollSessions} {
		if n, ok := sum.DocCounts[name]; ok {
			fmt.Fprintf(os.Stdout, "  mongodb %s: %d documents\n", name, n)
		}
	}
	_ = sum.Report.WriteSummary(os.Stdout)
}
