package analytics

import (
	"fmt"
	"math"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

// BuildVendorComparison pairs custom TSS with Strava's suffer score on the
// newest rows that carry both. Rows must be ordered newest first.
func BuildVendorComparison(rows []repository.MetricsRow, limit int) *VendorComparison {
	var (
		out                  VendorComparison
		stravaSum, customSum float64
	)
	for _, r := range rows {
		if limit > 0 && len(out.Comparisons) >= limit {
			break
		}
		if r.Native == nil || r.Native.SufferScore == nil || r.Custom.CustomTSS == nil {
			continue
		}
		vendor := *r.Native.SufferScore
		if vendor == 0 {
			continue
		}
		custom := *r.Custom.CustomTSS
		diff := custom - vendor

		stravaSum += vendor
		customSum += custom
		if len(out.Comparisons) == 0 {
			out.Summary.UserFTP = r.Custom.UserFTP
		}

		out.Comparisons = append(out.Comparisons, VendorComparisonRow{
			ActivityID:      r.Activity.ID,
			ActivityName:    r.Activity.Name,
			Date:            r.Activity.StartDateLocal.Format(dateLayout),
			Type:            r.Activity.Type,
			StravaTSS:       metrics.Round(vendor, 1),
			CustomTSS:       metrics.Round(custom, 1),
			Difference:      metrics.Round(diff, 1),
			PercentageDiff:  metrics.Round(diff/vendor*100, 1),
			NormalizedPower: r.Native.WeightedAverageWatts,
			IntensityFactor: r.Custom.IntensityFactor,
			Explanation:     ExplainDifference(diff, r.Custom.UserFTP),
		})
	}

	n := len(out.Comparisons)
	if n == 0 {
		return nil
	}

	avgStrava := stravaSum / float64(n)
	avgCustom := customSum / float64(n)
	avgDiff := avgCustom - avgStrava
	out.Summary.ActivitiesCompared = n
	out.Summary.AvgStravaTSS = metrics.Round(avgStrava, 1)
	out.Summary.AvgCustomTSS = metrics.Round(avgCustom, 1)
	out.Summary.AvgDifference = metrics.Round(avgDiff, 1)
	out.Summary.AvgPercentageDiff = metrics.Round(avgDiff/avgStrava*100, 1)

	return &out
}

// ExplainDifference describes what a custom minus vendor TSS gap says about
// the FTP Strava assumes.
func ExplainDifference(diff float64, userFTP int) string {
	switch {
	case math.Abs(diff) < vendorSimilarityThreshold:
		return "Similar TSS - Strava's estimated FTP is close to yours"
	case diff > 0:
		return fmt.Sprintf("Your TSS +%.1f - Strava underestimates your effort (Strava FTP > %dW)", diff, userFTP)
	default:
		return fmt.Sprintf("Your TSS %.1f - Strava overestimates your effort (Strava FTP < %dW)", diff, userFTP)
	}
}
