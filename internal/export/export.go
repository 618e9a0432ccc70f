// Package export writes an athlete's activities and their metrics as CSV or
// Parquet.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected csv|parquet)", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders rows in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	if format == FormatParquet {
		return WriteParquet(w, rows)
	}
	return WriteCSV(w, rows)
}

const pageSize = 500

// Row is one exported activity. Missing values stay nil.
type Row struct {
	Date                 string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	ActivityID           int64    `parquet:"name=activity_id, type=INT64"`
	Name                 string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type                 string   `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DistanceKM           float64  `parquet:"name=distance_km, type=DOUBLE"`
	DurationHours        float64  `parquet:"name=duration_hours, type=DOUBLE"`
	NormalizedPower      *float64 `parquet:"name=normalized_power, type=DOUBLE, repetitiontype=OPTIONAL"`
	StravaTSS            *float64 `parquet:"name=strava_tss, type=DOUBLE, repetitiontype=OPTIONAL"`
	CustomTSS            *float64 `parquet:"name=custom_tss, type=DOUBLE, repetitiontype=OPTIONAL"`
	TSSDifference        *float64 `parquet:"name=tss_difference, type=DOUBLE, repetitiontype=OPTIONAL"`
	IntensityFactor      *float64 `parquet:"name=intensity_factor, type=DOUBLE, repetitiontype=OPTIONAL"`
	Zone                 string   `parquet:"name=zone, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Best1MinPower        *int64   `parquet:"name=best_1min_power, type=INT64, repetitiontype=OPTIONAL"`
	Best5MinPower        *int64   `parquet:"name=best_5min_power, type=INT64, repetitiontype=OPTIONAL"`
	Best20MinPower       *int64   `parquet:"name=best_20min_power, type=INT64, repetitiontype=OPTIONAL"`
	Best1KMTime          *int64   `parquet:"name=best_1km_time, type=INT64, repetitiontype=OPTIONAL"`
	Best5KMTime          *int64   `parquet:"name=best_5km_time, type=INT64, repetitiontype=OPTIONAL"`
	Best10KMTime         *int64   `parquet:"name=best_10km_time, type=INT64, repetitiontype=OPTIONAL"`
	BestHalfMarathonTime *int64   `parquet:"name=best_half_marathon_time, type=INT64, repetitiontype=OPTIONAL"`
	BestMarathonTime     *int64   `parquet:"name=best_marathon_time, type=INT64, repetitiontype=OPTIONAL"`
	FTP                  *int64   `parquet:"name=ftp, type=INT64, repetitiontype=OPTIONAL"`
}

// Collect loads every activity of the athlete, newest first.
func Collect(ctx context.Context, activities repository.ActivityRepository, athleteID int64) ([]Row, error) {
	var rows []Row
	for offset := 0; ; offset += pageSize {
		page, err := activities.ListWithMetrics(ctx, athleteID, repository.PageParams{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for i := range page.Records {
			rows = append(rows, NewRow(&page.Records[i]))
		}
		if len(page.Records) < pageSize || offset+pageSize >= page.Total {
			return rows, nil
		}
	}
}

func NewRow(rec *repository.ActivityWithMetrics) Row {
	a := rec.Activity
	row := Row{
		Date:          a.StartDateLocal.Format(time.DateOnly),
		ActivityID:    a.ID,
		Name:          a.Name,
		Type:          a.Type,
		DistanceKM:    a.DistanceKM,
		DurationHours: a.MovingTimeHours(),
	}
	if n := rec.Native; n != nil {
		row.NormalizedPower = n.WeightedAverageWatts
		row.StravaTSS = n.SufferScore
	}
	if c := rec.Custom; c != nil {
		row.CustomTSS = c.CustomTSS
		row.IntensityFactor = c.IntensityFactor
		row.Zone = c.Zone().String()
		row.Best1MinPower = int64Ptr(c.Best1MinPower)
		row.Best5MinPower = int64Ptr(c.Best5MinPower)
		row.Best20MinPower = int64Ptr(c.Best20MinPower)
		row.Best1KMTime = int64Ptr(c.Best1KMTime)
		row.Best5KMTime = int64Ptr(c.Best5KMTime)
		row.Best10KMTime = int64Ptr(c.Best10KMTime)
		row.BestHalfMarathonTime = int64Ptr(c.BestHalfMarathonTime)
		row.BestMarathonTime = int64Ptr(c.BestMarathonTime)
		row.FTP = int64Ptr(&c.UserFTP)
	}
	if row.CustomTSS != nil && row.StravaTSS != nil {
		diff := metrics.Round(*row.CustomTSS-*row.StravaTSS, 1)
		row.TSSDifference = &diff
	}
	return row
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
