package strava

import "time"

type Athlete struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"firstname"`
	LastName  string  `json:"lastname"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Sex       string  `json:"sex"`
	Weight    float64 `json:"weight"`
	FTP       *int    `json:"ftp"`
}

type AthleteRef struct {
	ID int64 `json:"id"`
}

// Activity is the summary representation returned by the activity list endpoint.
// Distances are meters, speeds are meters per second and durations are seconds.
type Activity struct {
	ID                   int64      `json:"id"`
	Athlete              AthleteRef `json:"athlete"`
	Name                 string     `json:"name"`
	Type                 string     `json:"type"`
	SportType            string     `json:"sport_type"`
	StartDate            time.Time  `json:"start_date"`
	StartDateLocal       time.Time  `json:"start_date_local"`
	Timezone             string     `json:"timezone"`
	Distance             float64    `json:"distance"`
	MovingTime           int        `json:"moving_time"`
	ElapsedTime          int        `json:"elapsed_time"`
	TotalElevationGain   float64    `json:"total_elevation_gain"`
	AverageSpeed         float64    `json:"average_speed"`
	MaxSpeed             float64    `json:"max_speed"`
	AverageHeartrate     *float64   `json:"average_heartrate"`
	MaxHeartrate         *float64   `json:"max_heartrate"`
	HasHeartrate         bool       `json:"has_heartrate"`
	AverageCadence       *float64   `json:"average_cadence"`
	AverageTemp          *float64   `json:"average_temp"`
	AverageWatts         *float64   `json:"average_watts"`
	WeightedAverageWatts *float64   `json:"weighted_average_watts"`
	MaxWatts             *float64   `json:"max_watts"`
	DeviceWatts          bool       `json:"device_watts"`
	Kilojoules           *float64   `json:"kilojoules"`
	Calories             *float64   `json:"calories"`
	SufferScore          *float64   `json:"suffer_score"`
	PerceivedExertion    *float64   `json:"perceived_exertion"`
	Trainer              bool       `json:"trainer"`
	Commute              bool       `json:"commute"`
}

// EstimatedCalories prefers the reported value and falls back to kilojoules,
// which Strava reports for power-meter rides in roughly a one to one ratio.
func (a *Activity) EstimatedCalories() *float64 {
	if a.Calories != nil {
		return a.Calories
	}
	return a.Kilojoules
}
