package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func computeCmd(flags *globalFlags) *cobra.Command {
	var (
		activityID int64
		ftp        int
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute custom metrics for stored activities",
		Long:  "Computes TSS, intensity and records for every activity without a metrics record, or for one activity with --activity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			athleteID, err := a.athleteID(ctx)
			if err != nil {
				return err
			}
			var override *int
			if ftp > 0 {
				override = &ftp
			}

			if activityID != 0 {
				record, err := a.calc.Calculate(ctx, activityID, athleteID, override)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			}

			result, err := a.calc.CalculateAll(ctx, athleteID, override)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "calculated %d, skipped %d, errors %d of %d activities (FTP %d)\n",
				result.Calculated, result.Skipped, result.Errors, result.Total, result.UserFTP)
			for _, f := range result.Failures {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "activity %d: %s\n", f.ActivityID, f.Reason)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&activityID, "activity", 0, "compute a single activity")
	cmd.Flags().IntVar(&ftp, "ftp", 0, "FTP override in watts")
	return cmd
}
