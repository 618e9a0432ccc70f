package xsync

import (
	"math"

	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

// Convert maps a Strava summary onto the stored activity and its native
// metrics. Distance is stored in kilometers; zero speeds and elevation count
// as unknown.
func Convert(athleteID int64, a *strava.Activity) (*repository.Activity, *repository.NativeMetrics) {
	activity := &repository.Activity{
		AthleteID:          athleteID,
		ExternalID:         a.ID,
		Name:               a.Name,
		Type:               a.Type,
		SportType:          a.SportType,
		StartDate:          a.StartDate,
		StartDateLocal:     a.StartDateLocal,
		DistanceKM:         metrics.Round(a.Distance/1000, 2),
		MovingTimeSeconds:  a.MovingTime,
		ElapsedTimeSeconds: a.ElapsedTime,
		AverageSpeed:       nonZero(a.AverageSpeed),
		MaxSpeed:           nonZero(a.MaxSpeed),
		TotalElevationGain: nonZero(a.TotalElevationGain),
		AverageHeartrate:   a.AverageHeartrate,
		MaxHeartrate:       roundInt(a.MaxHeartrate),
		Calories:           a.EstimatedCalories(),
	}

	native := &repository.NativeMetrics{
		AverageWatts:         a.AverageWatts,
		WeightedAverageWatts: a.WeightedAverageWatts,
		MaxWatts:             a.MaxWatts,
		DeviceWatts:          a.DeviceWatts,
		AverageHeartrate:     a.AverageHeartrate,
		MaxHeartrate:         a.MaxHeartrate,
		HasHeartrate:         a.HasHeartrate,
		SufferScore:          a.SufferScore,
		PerceivedExertion:    roundInt(a.PerceivedExertion),
		AverageCadence:       a.AverageCadence,
		AverageTemp:          a.AverageTemp,
		Trainer:              a.Trainer,
		Commute:              a.Commute,
	}

	return activity, native
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func roundInt(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}
