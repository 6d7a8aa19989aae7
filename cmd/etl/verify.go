package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/database"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/metrics"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/repository"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Print row counts and orphan references of the relational store",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := database.OpenConfig(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		rep, err := repository.NewIntegrityRepo(db).Report(cmd.Context())
		if err != nil {
			return err
		}
		metrics.RecordOrphans(rep.OrphanUserRefs, rep.OrphanContentRefs)
		if err := rep.WriteSummary(os.Stdout); err != nil {
			return err
		}
		if !rep.Passed() {
			return errors.New("referential integrity check failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
