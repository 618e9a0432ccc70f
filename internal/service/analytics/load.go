package analytics

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

// isoWeek keys a date by ISO year and week, e.g. "2025-W02".
func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// BuildLoadAnalysis aggregates the rows of a window. It returns nil for an
// empty window.
func BuildLoadAnalysis(rows []repository.MetricsRow, days int) *LoadAnalysis {
	if len(rows) == 0 {
		return nil
	}

	var totalTSS, maxTSS, ifSum float64
	var ifCount int
	weekly := map[string]float64{}
	counts := make(map[string]int, len(metrics.Zones))
	for _, z := range metrics.Zones {
		counts[z.String()] = 0
	}

	for _, r := range rows {
		if tss := r.Custom.CustomTSS; tss != nil {
			totalTSS += *tss
			maxTSS = max(maxTSS, *tss)
			weekly[isoWeek(r.Activity.StartDateLocal)] += *tss
		}
		if f := r.Custom.IntensityFactor; f != nil {
			ifSum += *f
			ifCount++
			counts[metrics.ZoneFor(*f).String()]++
		}
	}

	percentages := make(map[string]float64, len(counts))
	for zone, n := range counts {
		if ifCount > 0 {
			percentages[zone] = metrics.Round(float64(n)/float64(ifCount)*100, 1)
		} else {
			percentages[zone] = 0
		}
	}

	var avgIF float64
	if ifCount > 0 {
		avgIF = metrics.Round(ifSum/float64(ifCount), 3)
	}

	progression := make([]WeeklyTSS, 0, len(weekly))
	var weeklySum float64
	for _, week := range slices.Sorted(maps.Keys(weekly)) {
		weeklySum += weekly[week]
		progression = append(progression, WeeklyTSS{Week: week, TSS: metrics.Round(weekly[week], 1)})
	}
	var avgWeekly float64
	if len(weekly) > 0 {
		avgWeekly = metrics.Round(weeklySum/float64(len(weekly)), 1)
	}

	return &LoadAnalysis{
		PeriodDays:      days,
		TotalActivities: len(rows),
		Load: LoadSummary{
			TotalTSS:          metrics.Round(totalTSS, 1),
			AvgTSSPerActivity: metrics.Round(totalTSS/float64(len(rows)), 1),
			MaxTSSSingle:      metrics.Round(maxTSS, 1),
			AvgWeeklyTSS:      avgWeekly,
		},
		Intensity: IntensityDistribution{
			AvgIntensityFactor: avgIF,
			ZonesCount:         counts,
			ZonesPercentage:    percentages,
		},
		WeeklyProgression: progression,
	}
}
