package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	dbPath    string
	athleteID int64
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "fitctl",
		Short:         "Training metrics from your Strava and FIT activities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (default ~/.config/fitmetrics/fitmetrics.db)")
	rootCmd.PersistentFlags().Int64Var(&flags.athleteID, "athlete", 0, "athlete id (default the first stored athlete)")

	rootCmd.AddCommand(
		migrateCmd(flags),
		authCmd(flags),
		tokenCmd(flags),
		settingsCmd(flags),
		computeCmd(flags),
		reportCmd(flags),
		importFitCmd(flags),
		exportCmd(flags),
		syncCmd(flags),
	)
	return rootCmd
}
