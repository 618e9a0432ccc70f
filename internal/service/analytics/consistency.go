package analytics

import (
	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

const neutralConsistency = 50.0

// ConsistencyScore rates how evenly activities spread over weeks, from 0 to
// 100. Fewer than two weeks of data score a neutral 50.
func ConsistencyScore(weeklyCounts []int) float64 {
	if len(weeklyCounts) < 2 {
		return neutralConsistency
	}

	var sum float64
	for _, c := range weeklyCounts {
		sum += float64(c)
	}
	mean := sum / float64(len(weeklyCounts))

	var variance float64
	for _, c := range weeklyCounts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(weeklyCounts))

	score := min(max(0, 100-variance*10), 100)
	return metrics.Round(score, 1)
}

func weeklyCounts(rows []repository.MetricsRow) []int {
	byWeek := map[string]int{}
	for _, r := range rows {
		byWeek[isoWeek(r.Activity.StartDateLocal)]++
	}
	counts := make([]int, 0, len(byWeek))
	for _, n := range byWeek {
		counts = append(counts, n)
	}
	return counts
}
