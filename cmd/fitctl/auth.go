package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/garrettladley/fitmetrics/internal/oauth"
	"github.com/spf13/cobra"
)

var errStravaNotConfigured = errors.New("STRAVA_CLIENT_ID and STRAVA_CLIENT_SECRET must be set")

func authCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Connect a Strava account",
		Long:  "Opens the browser to authorize with Strava and stores the athlete and token locally.",
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

			flow, err := oauth.NewDirectFlow(oauth.NewConfig(a.cfg.Strava), a.repo.Athletes, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			auth, err := flow.Run(ctx)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Authentication successful!\n")
			_, _ = fmt.Fprintf(out, "Athlete ID:    %d\n", auth.AthleteID)
			_, _ = fmt.Fprintf(out, "Token expires: %s\n", auth.Token.Expiry.Format(time.DateTime))
			return nil
		},
	}
}

func tokenCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Show the stored Strava token",
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
			token, err := a.repo.Athletes.GetToken(ctx, athleteID)
			if err != nil {
				return fmt.Errorf("failed to get token: %w", err)
			}
			if token == nil {
				return oauth.ErrNoToken
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Athlete ID:    %d\n", athleteID)
			_, _ = fmt.Fprintf(out, "Token Type:    %s\n", token.TokenType)
			_, _ = fmt.Fprintf(out, "Expiry:        %s\n", token.Expiry.Format(time.RFC3339))
			if token.Expiry.Before(time.Now()) {
				status := "EXPIRED"
				if token.RefreshToken != nil {
					status += " (refreshed on next sync)"
				}
				_, _ = fmt.Fprintf(out, "Status:        %s\n", status)
			} else {
				_, _ = fmt.Fprintf(out, "Status:        Valid (expires in %s)\n", time.Until(token.Expiry).Round(time.Second))
			}
			return nil
		},
	}
}
