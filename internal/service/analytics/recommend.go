package analytics

import (
	"fmt"

	"github.com/garrettladley/fitmetrics/internal/metrics"
)

const (
	lowIntensity  = 0.70
	highIntensity = 0.90
	lowVolume     = 200.0
	highVolume    = 500.0
)

const setupRecommendation = "Sync activities and compute custom metrics first"

var (
	intensitySession = WorkoutSuggestion{
		Type:        "Intensity session",
		TargetIF:    "0.85-0.95",
		Duration:    "60-90 minutes",
		Description: "Tempo or threshold session to raise intensity",
	}
	activeRecovery = WorkoutSuggestion{
		Type:        "Active recovery",
		TargetIF:    "< 0.70",
		Duration:    "45-60 minutes",
		Description: "Easy session for recovery",
	}
	balancedEndurance = WorkoutSuggestion{
		Type:        "Balanced endurance",
		TargetIF:    "0.75-0.85",
		Duration:    "75-90 minutes",
		Description: "Endurance session with a few efforts",
	}
)

// Recommend turns a load analysis into training advice. A nil analysis
// yields the setup recommendation only.
func Recommend(analysis *LoadAnalysis, days int) *Recommendations {
	if analysis == nil {
		return &Recommendations{
			Recommendations: []string{setupRecommendation},
			FocusAreas:      []string{},
		}
	}

	avgIF := analysis.Intensity.AvgIntensityFactor
	totalTSS := analysis.Load.TotalTSS

	r := &Recommendations{
		AnalysisPeriod:  fmt.Sprintf("last %d days", days),
		Recommendations: []string{},
		FocusAreas:      []string{},
	}

	switch {
	case avgIF < lowIntensity:
		r.Recommendations = append(r.Recommendations, "Raise the average intensity of your sessions")
		r.FocusAreas = append(r.FocusAreas, "Include more work in zones 3-4")
	case avgIF > highIntensity:
		r.Recommendations = append(r.Recommendations, "Include more active recovery")
		r.FocusAreas = append(r.FocusAreas, "Sessions in zones 1-2 for recovery")
	}

	switch {
	case totalTSS < lowVolume:
		r.Recommendations = append(r.Recommendations, "Increase training volume")
		r.FocusAreas = append(r.FocusAreas, "Add long endurance sessions")
	case totalTSS > highVolume:
		r.Recommendations = append(r.Recommendations, "Plan a recovery week")
		r.FocusAreas = append(r.FocusAreas, "Reduce intensity and volume")
	}

	next := SuggestNextWorkout(analysis.Intensity.ZonesCount)
	r.NextWorkout = &next
	r.CurrentForm = AssessForm(totalTSS, avgIF)
	return r
}

func SuggestNextWorkout(zones map[string]int) WorkoutSuggestion {
	switch {
	case zones[metrics.ZoneRecovery.String()] > zones[metrics.ZoneThreshold.String()]*2:
		return intensitySession
	case zones[metrics.ZoneThresholdPlus.String()] > 2:
		return activeRecovery
	default:
		return balancedEndurance
	}
}

func AssessForm(totalTSS, avgIF float64) string {
	switch {
	case totalTSS > 400 && avgIF > 0.80:
		return "Excellent form - maintain the level"
	case totalTSS > 300 && avgIF > 0.75:
		return "Good form - room to increase slightly"
	case totalTSS < lowVolume || avgIF < 0.65:
		return "Form to develop - build up gradually"
	default:
		return "Moderate form - keep building consistently"
	}
}
