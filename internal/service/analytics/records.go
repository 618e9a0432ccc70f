package analytics

import (
	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/ptr"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

func maxOf(cur *int, v *int) *int {
	if v == nil || (cur != nil && *cur >= *v) {
		return cur
	}
	return ptr.Ref(*v)
}

// minTime ignores zero times.
func minTime(cur *int, v *int) *int {
	if v == nil || *v == 0 || (cur != nil && *cur <= *v) {
		return cur
	}
	return ptr.Ref(*v)
}

// BuildRecordsSummary returns nil for an athlete without records.
func BuildRecordsSummary(rows []repository.MetricsRow) *RecordsSummary {
	if len(rows) == 0 {
		return nil
	}

	var (
		s                 RecordsSummary
		tssSum, ifSum     float64
		tssCount, ifCount int
		maxTSS            *float64
	)
	for _, r := range rows {
		c := r.Custom
		s.Power.Best1MinPower = maxOf(s.Power.Best1MinPower, c.Best1MinPower)
		s.Power.Best5MinPower = maxOf(s.Power.Best5MinPower, c.Best5MinPower)
		s.Power.Best20MinPower = maxOf(s.Power.Best20MinPower, c.Best20MinPower)

		s.Distance.Best1KMTime = minTime(s.Distance.Best1KMTime, c.Best1KMTime)
		s.Distance.Best5KMTime = minTime(s.Distance.Best5KMTime, c.Best5KMTime)
		s.Distance.Best10KMTime = minTime(s.Distance.Best10KMTime, c.Best10KMTime)
		s.Distance.BestHalfMarathonTime = minTime(s.Distance.BestHalfMarathonTime, c.BestHalfMarathonTime)
		s.Distance.BestMarathonTime = minTime(s.Distance.BestMarathonTime, c.BestMarathonTime)

		if c.CustomTSS != nil {
			tssSum += *c.CustomTSS
			tssCount++
			if maxTSS == nil || *c.CustomTSS > *maxTSS {
				maxTSS = ptr.Ref(*c.CustomTSS)
			}
		}
		if c.IntensityFactor != nil {
			ifSum += *c.IntensityFactor
			ifCount++
		}
	}

	if best := s.Power.Best20MinPower; best != nil {
		s.Power.EstimatedFTPFrom20Min = ptr.Ref(estimateFTP(*best))
	}

	s.Distance.Best1KMPace = metrics.FormatPacePtr(s.Distance.Best1KMTime, 1)
	s.Distance.Best5KMPace = metrics.FormatPacePtr(s.Distance.Best5KMTime, 5)
	s.Distance.Best10KMPace = metrics.FormatPacePtr(s.Distance.Best10KMTime, 10)
	s.Distance.BestHalfMarathonPace = metrics.FormatPacePtr(s.Distance.BestHalfMarathonTime, 21.1)
	s.Distance.BestMarathonPace = metrics.FormatPacePtr(s.Distance.BestMarathonTime, 42.2)

	if tssCount > 0 {
		s.Training.AvgTSS = ptr.Ref(metrics.Round(tssSum/float64(tssCount), 1))
		s.Training.MaxTSS = ptr.Ref(metrics.Round(*maxTSS, 1))
	}
	if ifCount > 0 {
		s.Training.AvgIntensityFactor = ptr.Ref(metrics.Round(ifSum/float64(ifCount), 3))
	}
	s.Training.TotalActivitiesAnalyzed = len(rows)

	return &s
}
