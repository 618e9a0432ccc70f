package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"date", "activity_id", "name", "type", "distance_km", "duration_hours",
	"normalized_power", "strava_tss", "custom_tss", "tss_difference", "intensity_factor", "zone",
	"best_1min_power", "best_5min_power", "best_20min_power",
	"best_1km_time", "best_5km_time", "best_10km_time", "best_half_marathon_time", "best_marathon_time",
	"ftp",
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Date,
			strconv.FormatInt(r.ActivityID, 10),
			r.Name,
			r.Type,
			formatFloat(&r.DistanceKM),
			formatFloat(&r.DurationHours),
			formatFloat(r.NormalizedPower),
			formatFloat(r.StravaTSS),
			formatFloat(r.CustomTSS),
			formatFloat(r.TSSDifference),
			formatFloat(r.IntensityFactor),
			r.Zone,
			formatInt(r.Best1MinPower),
			formatInt(r.Best5MinPower),
			formatInt(r.Best20MinPower),
			formatInt(r.Best1KMTime),
			formatInt(r.Best5KMTime),
			formatInt(r.Best10KMTime),
			formatInt(r.BestHalfMarathonTime),
			formatInt(r.BestMarathonTime),
			formatInt(r.FTP),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
