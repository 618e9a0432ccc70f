package analytics

import (
	"cmp"
	"slices"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/ptr"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

// estimateFTP takes 95% of a 20 minute best, truncated to whole watts.
func estimateFTP(best20Min int) int {
	return int(float64(best20Min) * ftpFrom20MinFactor)
}

// DetectFTPTests picks 20 to 30 minute efforts at or above threshold, most
// intense first.
func DetectFTPTests(rows []repository.MetricsRow) []FTPTest {
	candidates := make([]repository.MetricsRow, 0)
	for _, r := range rows {
		secs := r.Activity.MovingTimeSeconds
		if secs < ftpTestMinSeconds || secs > ftpTestMaxSeconds {
			continue
		}
		if f := r.Custom.IntensityFactor; f == nil || *f < ftpTestMinIntensityFactor {
			continue
		}
		candidates = append(candidates, r)
	}

	slices.SortStableFunc(candidates, func(a, b repository.MetricsRow) int {
		return cmp.Compare(*b.Custom.IntensityFactor, *a.Custom.IntensityFactor)
	})
	if len(candidates) > maxFTPTests {
		candidates = candidates[:maxFTPTests]
	}

	tests := make([]FTPTest, 0, len(candidates))
	for _, r := range candidates {
		t := FTPTest{
			ActivityID:          r.Activity.ID,
			ActivityName:        r.Activity.Name,
			Date:                r.Activity.StartDateLocal.Format(dateLayout),
			DurationMinutes:     metrics.Round(float64(r.Activity.MovingTimeSeconds)/60, 1),
			IntensityFactor:     *r.Custom.IntensityFactor,
			Estimated20MinPower: r.Custom.Best20MinPower,
			CurrentFTP:          r.Custom.UserFTP,
		}
		if best := r.Custom.Best20MinPower; best != nil {
			ftp := estimateFTP(*best)
			t.EstimatedFTP = &ftp
			t.FTPImprovement = ptr.Ref(ftp - r.Custom.UserFTP)
		}
		tests = append(tests, t)
	}
	return tests
}

// BuildPowerCurve returns nil unless some record carries a 1 minute best.
func BuildPowerCurve(rows []repository.MetricsRow) *PowerCurve {
	var best1, best5, best20 int
	var found bool
	for _, r := range rows {
		if r.Custom.Best1MinPower == nil {
			continue
		}
		found = true
		best1 = max(best1, *r.Custom.Best1MinPower)
		best5 = max(best5, ptr.Value(r.Custom.Best5MinPower))
		best20 = max(best20, ptr.Value(r.Custom.Best20MinPower))
	}
	if !found {
		return nil
	}

	curve := &PowerCurve{
		Points: []PowerPoint{
			{DurationSeconds: 60, Power: best1},
			{DurationSeconds: 300, Power: best5},
			{DurationSeconds: 1200, Power: best20},
		},
		PeakPower1Min:  best1,
		PeakPower5Min:  best5,
		PeakPower20Min: best20,
	}
	if best20 > 0 {
		curve.EstimatedFTP = ptr.Ref(estimateFTP(best20))
	}
	return curve
}
