package repository

import (
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
)

type Athlete struct {
	ID        int64     `json:"id"`
	StravaID  *int64    `json:"strava_id,omitempty"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Token struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken *string
	TokenType    string
	Expiry       time.Time
}

// Activity is the vendor summary of one workout. StartDateLocal holds the
// athlete's wall clock time labelled as UTC.
type Activity struct {
	ID                 int64     `json:"id"`
	AthleteID          int64     `json:"athlete_id"`
	ExternalID         int64     `json:"external_id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	DistanceKM         float64   `json:"distance_km"`
	MovingTimeSeconds  int       `json:"moving_time_seconds"`
	ElapsedTimeSeconds int       `json:"elapsed_time_seconds"`
	AverageSpeed       *float64  `json:"average_speed"`
	MaxSpeed           *float64  `json:"max_speed"`
	TotalElevationGain *float64  `json:"total_elevation_gain"`
	AverageHeartrate   *float64  `json:"average_heartrate"`
	MaxHeartrate       *int      `json:"max_heartrate"`
	Calories           *float64  `json:"calories"`
	CreatedAt          time.Time `json:"created_at"`
}

func (a *Activity) Kind() metrics.ActivityKind {
	return metrics.ActivityKind(a.Type)
}

func (a *Activity) MovingTimeHours() float64 {
	return metrics.HoursFromSeconds(a.MovingTimeSeconds)
}

type NativeMetrics struct {
	ActivityID           int64    `json:"activity_id"`
	AverageWatts         *float64 `json:"average_watts"`
	WeightedAverageWatts *float64 `json:"weighted_average_watts"`
	MaxWatts             *float64 `json:"max_watts"`
	DeviceWatts          bool     `json:"device_watts"`
	AverageHeartrate     *float64 `json:"average_heartrate"`
	MaxHeartrate         *float64 `json:"max_heartrate"`
	HasHeartrate         bool     `json:"has_heartrate"`
	SufferScore          *float64 `json:"suffer_score"`
	PerceivedExertion    *int     `json:"perceived_exertion"`
	AverageCadence       *float64 `json:"average_cadence"`
	AverageTemp          *float64 `json:"average_temp"`
	Trainer              bool     `json:"trainer"`
	Commute              bool     `json:"commute"`
}

type Settings struct {
	AthleteID        int64     `json:"athlete_id"`
	FTP              int       `json:"current_ftp"`
	MaxHeartrate     *int      `json:"max_heartrate"`
	RestingHeartrate *int      `json:"resting_heartrate"`
	Weight           *float64  `json:"weight"`
	AutoUpdateFTP    bool      `json:"auto_update_ftp"`
	FTPTestDetection bool      `json:"ftp_test_detection"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewSettings returns the settings an athlete starts with.
func NewSettings(athleteID int64, ftp int) *Settings {
	return &Settings{
		AthleteID:        athleteID,
		FTP:              ftp,
		AutoUpdateFTP:    true,
		FTPTestDetection: true,
	}
}

const CalculationMethodStravaBased = "strava_based"

// CustomMetrics is computed once per (activity, athlete) and never updated.
type CustomMetrics struct {
	ID                   int64     `json:"id"`
	ActivityID           int64     `json:"activity_id"`
	AthleteID            int64     `json:"athlete_id"`
	UserFTP              int       `json:"user_ftp"`
	UserWeight           *float64  `json:"user_weight"`
	CustomTSS            *float64  `json:"custom_tss"`
	IntensityFactor      *float64  `json:"intensity_factor"`
	TrainingLoad         *float64  `json:"training_load"`
	Best1MinPower        *int      `json:"best_1min_power"`
	Best5MinPower        *int      `json:"best_5min_power"`
	Best20MinPower       *int      `json:"best_20min_power"`
	Best1KMTime          *int      `json:"best_1km_time"`
	Best5KMTime          *int      `json:"best_5km_time"`
	Best10KMTime         *int      `json:"best_10km_time"`
	BestHalfMarathonTime *int      `json:"best_half_marathon_time"`
	BestMarathonTime     *int      `json:"best_marathon_time"`
	CalculatedAt         time.Time `json:"calculated_at"`
	CalculationMethod    string    `json:"calculation_method"`
}

func (m *CustomMetrics) Zone() metrics.Zone {
	return metrics.PowerZoneFor(m.IntensityFactor)
}

type ActivityWithMetrics struct {
	Activity Activity       `json:"activity"`
	Native   *NativeMetrics `json:"native_metrics"`
	Custom   *CustomMetrics `json:"custom_metrics"`
}

// MetricsRow is a computed record joined to its activity.
type MetricsRow struct {
	Activity Activity
	Custom   CustomMetrics
	Native   *NativeMetrics
}
