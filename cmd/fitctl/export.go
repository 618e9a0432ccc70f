package main

import (
	"fmt"
	"os"

	"github.com/garrettladley/fitmetrics/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities with their metrics as CSV or Parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
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
			rows, err := export.Collect(ctx, a.repo.Activities, athleteID)
			if err != nil {
				return err
			}

			switch {
			case out == "":
				return export.Write(cmd.OutOrStdout(), f, rows)
			case f == export.FormatParquet:
				err = export.WriteParquetFile(out, rows)
			default:
				err = writeCSVFile(out, rows)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d activities to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or parquet")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func writeCSVFile(path string, rows []export.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
