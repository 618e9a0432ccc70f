package analytics

import (
	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

func BuildTrainingPatterns(rows []repository.MetricsRow, days int) *TrainingPatterns {
	if len(rows) == 0 || days <= 0 {
		return nil
	}

	byDay := map[string]DayPattern{}
	byType := map[string]TypePattern{}
	for _, r := range rows {
		day := r.Activity.StartDateLocal.Weekday().String()
		d := byDay[day]
		d.Count++
		if tss := r.Custom.CustomTSS; tss != nil {
			d.TotalTSS += *tss
		}
		if f := r.Custom.IntensityFactor; f != nil {
			d.TotalIF += *f
		}
		byDay[day] = d

		t := byType[r.Activity.Type]
		t.Count++
		if tss := r.Custom.CustomTSS; tss != nil {
			t.TotalTSS += *tss
		}
		t.TotalDistance += r.Activity.DistanceKM
		byType[r.Activity.Type] = t
	}

	for day, d := range byDay {
		d.AvgTSS = metrics.Round(d.TotalTSS/float64(d.Count), 1)
		d.AvgIF = metrics.Round(d.TotalIF/float64(d.Count), 3)
		d.TotalTSS = metrics.Round(d.TotalTSS, 1)
		d.TotalIF = metrics.Round(d.TotalIF, 4)
		byDay[day] = d
	}
	for typ, t := range byType {
		t.TotalTSS = metrics.Round(t.TotalTSS, 1)
		t.TotalDistance = metrics.Round(t.TotalDistance, 2)
		byType[typ] = t
	}

	return &TrainingPatterns{
		AnalysisPeriodDays:  days,
		TotalActivities:     len(rows),
		DayOfWeek:           byDay,
		ActivityType:        byType,
		WeeklyAvgActivities: metrics.Round(float64(len(rows))/(float64(days)/7), 1),
		ConsistencyScore:    ConsistencyScore(weeklyCounts(rows)),
	}
}
