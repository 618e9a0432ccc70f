package main

import (
	"fmt"

	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/oauth"
	"github.com/garrettladley/fitmetrics/internal/xsync"
	"github.com/spf13/cobra"
)

func syncCmd(flags *globalFlags) *cobra.Command {
	var (
		compute bool
		ftp     int
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull new activities from Strava",
		Long:  "Fetches activities newer than the last stored one using the token saved by `fitctl auth`.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.cfg.Strava.Configured() {
				return errStravaNotConfigured
			}
			athleteID, err := a.athleteID(ctx)
			if err != nil {
				return err
			}

			oauthConfig := oauth.NewConfig(a.cfg.Strava)
			var checker oauth.TokenChecker = oauth.NewDBTokenSource(oauthConfig, a.repo.Athletes, athleteID)
			ok, err := checker.HasToken(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: run `fitctl auth` first", oauth.ErrNoToken)
			}

			clients := func(id int64) *strava.Client {
				return strava.New(
					oauth.NewDBTokenSource(oauthConfig, a.repo.Athletes, id),
					strava.WithLogger(a.logger),
				)
			}
			svc := xsync.NewService(clients, a.repo, a.calc, a.logger)

			opts := xsync.Options{Compute: compute}
			if ftp > 0 {
				opts.FTP = &ftp
			}
			result, err := svc.Sync(ctx, athleteID, opts)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, stored %d, failed %d\n", result.Fetched, result.Stored, result.Failed)
			if c := result.Calculation; c != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "calculated %d, skipped %d, errors %d (FTP %d)\n",
					c.Calculated, c.Skipped, c.Errors, c.UserFTP)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compute, "compute", false, "compute custom metrics after syncing")
	cmd.Flags().IntVar(&ftp, "ftp", 0, "FTP override for --compute")
	return cmd
}
