package main

import (
	"fmt"

	"github.com/garrettladley/fitmetrics/internal/fitfile"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	"github.com/spf13/cobra"
)

func importFitCmd(flags *globalFlags) *cobra.Command {
	var compute bool

	cmd := &cobra.Command{
		Use:   "import-fit <file>...",
		Short: "Import activities from FIT files",
		Args:  cobra.MinimumNArgs(1),
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

			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				imp, err := fitfile.ReadFile(path, athleteID)
				if err != nil {
					failed++
					a.logger.ErrorContext(ctx, "failed to decode fit file", xslog.Path(path), xslog.Error(err))
					continue
				}
				id, err := fitfile.Save(ctx, a.repo.Activities, imp)
				if err != nil {
					failed++
					a.logger.ErrorContext(ctx, "failed to store fit activity", xslog.Path(path), xslog.Error(err))
					continue
				}
				_, _ = fmt.Fprintf(out, "%s -> activity %d (%s, %.2f km)\n", path, id, imp.Activity.Name, imp.Activity.DistanceKM)

				if compute {
					record, err := a.calc.Calculate(ctx, id, athleteID, nil)
					if err != nil {
						failed++
						a.logger.ErrorContext(ctx, "failed to compute metrics", xslog.ActivityID(id), xslog.Error(err))
						continue
					}
					if record.CustomTSS != nil {
						_, _ = fmt.Fprintf(out, "  TSS %.1f\n", *record.CustomTSS)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compute, "compute", false, "compute custom metrics for imported activities")
	return cmd
}
