package main

import (
	"fmt"
	"strconv"

	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/validator"
	"github.com/spf13/cobra"
)

func settingsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change athlete settings",
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
			settings, err := a.athletes.GetOrCreate(ctx, athleteID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), settings)
		},
	}
	cmd.AddCommand(setFTPCmd(flags), zonesCmd(flags))
	return cmd
}

func setFTPCmd(flags *globalFlags) *cobra.Command {
	var recalculate bool

	cmd := &cobra.Command{
		Use:   "set-ftp <watts>",
		Short: "Change the FTP, optionally recomputing the last 30 days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ftp, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid ftp %q: %w", args[0], athlete.ErrInvalidFTP)
			}
			req := athlete.UpdateFTPRequest{NewFTP: ftp, RecalculateRecent: recalculate}
			if appErr := validator.Validate(req); appErr != nil {
				return fmt.Errorf("invalid ftp %q: %w", args[0], athlete.ErrInvalidFTP)
			}

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
			update, err := a.athletes.UpdateFTP(ctx, athleteID, req)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "FTP %d -> %d (%+d W), %d activities recalculated\n",
				update.OldFTP, update.NewFTP, update.Difference, update.RecalculatedActivities)
			return nil
		},
	}
	cmd.Flags().BoolVar(&recalculate, "recalculate", false, "recompute metrics of the last 30 days with the new FTP")
	return cmd
}

func zonesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "Show power and heart rate zones",
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
			zones, err := a.athletes.Zones(ctx, athleteID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), zones)
		},
	}
}
