package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/spf13/cobra"
)

type reportFunc func(ctx context.Context, a *app, athleteID int64) (any, error)

func reportCmd(flags *globalFlags) *cobra.Command {
	var (
		days   int
		limit  int
		months int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print training reports as JSON",
	}
	cmd.PersistentFlags().IntVar(&days, "days", 0, "lookback window in days (report default when unset)")
	cmd.PersistentFlags().IntVar(&limit, "limit", analytics.DefaultComparisonLimit, "activities to compare")
	cmd.PersistentFlags().IntVar(&months, "months", analytics.DefaultFTPTestMonths, "lookback window in months for FTP tests")

	window := func(def int) int {
		if days > 0 {
			return days
		}
		return def
	}

	reports := []struct {
		use   string
		short string
		run   reportFunc
	}{
		{"load", "Training load, intensity distribution and weekly TSS", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.TrainingLoad(ctx, id, window(analytics.DefaultLoadDays))
		}},
		{"records", "Best power and distance records", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.RecordsSummary(ctx, id)
		}},
		{"patterns", "Training patterns by weekday and activity type", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.TrainingPatterns(ctx, id, window(analytics.DefaultPatternDays))
		}},
		{"power-curve", "Best power at 1, 5 and 20 minutes", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.PowerCurve(ctx, id)
		}},
		{"ftp-tests", "Activities that look like FTP tests", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.DetectFTPTests(ctx, id, months)
		}},
		{"compare", "Custom TSS against the Strava score", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.CompareWithVendor(ctx, id, limit)
		}},
		{"recommendations", "Training recommendations from recent load", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.Recommendations(ctx, id, window(analytics.DefaultRecommendationDays))
		}},
		{"dashboard", "All reports combined", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.Dashboard(ctx, id)
		}},
		{"status", "Metrics coverage of stored activities", func(ctx context.Context, a *app, id int64) (any, error) {
			return a.reports.MetricsStatus(ctx, id)
		}},
	}

	for _, r := range reports {
		cmd.AddCommand(&cobra.Command{
			Use:   r.use,
			Short: r.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReport(cmd, flags, r.run)
			},
		})
	}
	return cmd
}

func runReport(cmd *cobra.Command, flags *globalFlags, run reportFunc) error {
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

	report, err := run(ctx, a, athleteID)
	if errors.Is(err, analytics.ErrNoData) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No computed metrics in this period. Run `fitctl compute` first.")
		return nil
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), report)
}
