package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/fitmetrics/internal/repository"
)

var (
	// ErrNoData means no computed metrics fall inside the requested range.
	ErrNoData = errors.New("no computed metrics for the requested period")

	// ErrSetupRequired means the athlete has not stored settings yet.
	ErrSetupRequired = errors.New("athlete settings not configured, set an FTP first")
)

type Service interface {
	TrainingLoad(ctx context.Context, athleteID int64, days int) (*LoadAnalysis, error)
	DetectFTPTests(ctx context.Context, athleteID int64, months int) ([]FTPTest, error)
	PowerCurve(ctx context.Context, athleteID int64) (*PowerCurve, error)
	TrainingPatterns(ctx context.Context, athleteID int64, days int) (*TrainingPatterns, error)
	RecordsSummary(ctx context.Context, athleteID int64) (*RecordsSummary, error)
	CompareWithVendor(ctx context.Context, athleteID int64, limit int) (*VendorComparison, error)

	// Recommendations never returns ErrNoData; an empty window yields the
	// setup recommendation instead.
	Recommendations(ctx context.Context, athleteID int64, days int) (*Recommendations, error)

	// Dashboard combines the reports above and caches the result per athlete.
	// Returns ErrSetupRequired when the athlete has no settings.
	Dashboard(ctx context.Context, athleteID int64) (*Dashboard, error)

	MetricsStatus(ctx context.Context, athleteID int64) (*MetricsStatus, error)
}

const dateLayout = time.DateOnly

const (
	DefaultLoadDays            = 30
	DefaultPatternDays         = 90
	DefaultRecommendationDays  = 14
	DefaultFTPTestMonths       = 6
	DefaultComparisonLimit     = 20
	dashboardComparisonLimit   = 10
	dashboardFTPTestMonths     = 3
	dashboardFTPTests          = 3
	maxFTPTests                = 10
	dashboardReport            = "dashboard"
	ftpFrom20MinFactor         = 0.95
	vendorSimilarityThreshold  = 5.0
	ftpTestMinSeconds          = 1200
	ftpTestMaxSeconds          = 1800
	ftpTestMinIntensityFactor  = 0.95
	daysPerMonthForFTPDetector = 30
)

type LoadAnalysis struct {
	PeriodDays        int                   `json:"period_days"`
	TotalActivities   int                   `json:"total_activities"`
	Load              LoadSummary           `json:"training_load"`
	Intensity         IntensityDistribution `json:"intensity_distribution"`
	WeeklyProgression []WeeklyTSS           `json:"weekly_progression"`
}

type LoadSummary struct {
	TotalTSS          float64 `json:"total_tss"`
	AvgTSSPerActivity float64 `json:"avg_tss_per_activity"`
	MaxTSSSingle      float64 `json:"max_tss_single"`
	AvgWeeklyTSS      float64 `json:"avg_weekly_tss"`
}

type IntensityDistribution struct {
	AvgIntensityFactor float64            `json:"avg_intensity_factor"`
	ZonesCount         map[string]int     `json:"zones_count"`
	ZonesPercentage    map[string]float64 `json:"zones_percentage"`
}

type WeeklyTSS struct {
	Week string  `json:"week"`
	TSS  float64 `json:"tss"`
}

type FTPTest struct {
	ActivityID          int64   `json:"activity_id"`
	ActivityName        string  `json:"activity_name"`
	Date                string  `json:"date"`
	DurationMinutes     float64 `json:"duration_minutes"`
	IntensityFactor     float64 `json:"intensity_factor"`
	Estimated20MinPower *int    `json:"estimated_20min_power"`
	EstimatedFTP        *int    `json:"estimated_ftp"`
	CurrentFTP          int     `json:"current_ftp"`
	FTPImprovement      *int    `json:"ftp_improvement"`
}

type PowerPoint struct {
	DurationSeconds int `json:"duration_seconds"`
	Power           int `json:"power"`
}

type PowerCurve struct {
	Points         []PowerPoint `json:"power_curve"`
	EstimatedFTP   *int         `json:"estimated_ftp"`
	PeakPower1Min  int          `json:"peak_power_1min"`
	PeakPower5Min  int          `json:"peak_power_5min"`
	PeakPower20Min int          `json:"peak_power_20min"`
}

type DayPattern struct {
	Count    int     `json:"count"`
	TotalTSS float64 `json:"total_tss"`
	TotalIF  float64 `json:"total_if"`
	AvgTSS   float64 `json:"avg_tss"`
	AvgIF    float64 `json:"avg_if"`
}

type TypePattern struct {
	Count         int     `json:"count"`
	TotalTSS      float64 `json:"total_tss"`
	TotalDistance float64 `json:"total_distance"`
}

type TrainingPatterns struct {
	AnalysisPeriodDays  int                    `json:"analysis_period_days"`
	TotalActivities     int                    `json:"total_activities"`
	DayOfWeek           map[string]DayPattern  `json:"day_of_week_patterns"`
	ActivityType        map[string]TypePattern `json:"activity_type_patterns"`
	WeeklyAvgActivities float64                `json:"weekly_avg_activities"`
	ConsistencyScore    float64                `json:"consistency_score"`
}

type PowerRecordsSummary struct {
	Best1MinPower         *int `json:"best_1min_power"`
	Best5MinPower         *int `json:"best_5min_power"`
	Best20MinPower        *int `json:"best_20min_power"`
	EstimatedFTPFrom20Min *int `json:"estimated_ftp_from_20min"`
}

type DistanceRecordsSummary struct {
	Best1KMTime          *int    `json:"best_1km_time"`
	Best1KMPace          *string `json:"best_1km_pace"`
	Best5KMTime          *int    `json:"best_5km_time"`
	Best5KMPace          *string `json:"best_5km_pace"`
	Best10KMTime         *int    `json:"best_10km_time"`
	Best10KMPace         *string `json:"best_10km_pace"`
	BestHalfMarathonTime *int    `json:"best_half_marathon_time"`
	BestHalfMarathonPace *string `json:"best_half_marathon_pace"`
	BestMarathonTime     *int    `json:"best_marathon_time"`
	BestMarathonPace     *string `json:"best_marathon_pace"`
}

type TrainingStats struct {
	AvgTSS                  *float64 `json:"avg_tss"`
	MaxTSS                  *float64 `json:"max_tss"`
	AvgIntensityFactor      *float64 `json:"avg_intensity_factor"`
	TotalActivitiesAnalyzed int      `json:"total_activities_analyzed"`
}

type RecordsSummary struct {
	Power    PowerRecordsSummary    `json:"power_records"`
	Distance DistanceRecordsSummary `json:"distance_records"`
	Training TrainingStats          `json:"training_stats"`
}

type VendorComparisonRow struct {
	ActivityID      int64    `json:"activity_id"`
	ActivityName    string   `json:"activity_name"`
	Date            string   `json:"date"`
	Type            string   `json:"type"`
	StravaTSS       float64  `json:"strava_tss"`
	CustomTSS       float64  `json:"custom_tss"`
	Difference      float64  `json:"difference"`
	PercentageDiff  float64  `json:"percentage_diff"`
	NormalizedPower *float64 `json:"normalized_power"`
	IntensityFactor *float64 `json:"intensity_factor"`
	Explanation     string   `json:"explanation"`
}

type VendorComparisonSummary struct {
	ActivitiesCompared int     `json:"activities_compared"`
	AvgStravaTSS       float64 `json:"avg_strava_tss"`
	AvgCustomTSS       float64 `json:"avg_custom_tss"`
	AvgDifference      float64 `json:"avg_difference"`
	AvgPercentageDiff  float64 `json:"avg_percentage_diff"`
	UserFTP            int     `json:"user_ftp"`
}

type VendorComparison struct {
	Summary     VendorComparisonSummary `json:"summary"`
	Comparisons []VendorComparisonRow   `json:"comparisons"`
}

type WorkoutSuggestion struct {
	Type        string `json:"type"`
	TargetIF    string `json:"target_if"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Recommendations struct {
	AnalysisPeriod  string             `json:"analysis_period,omitempty"`
	Recommendations []string           `json:"recommendations"`
	FocusAreas      []string           `json:"focus_areas"`
	NextWorkout     *WorkoutSuggestion `json:"next_workout_suggestion"`
	CurrentForm     string             `json:"current_form,omitempty"`
}

type Dashboard struct {
	Settings           *repository.Settings `json:"athlete_settings"`
	PersonalRecords    *RecordsSummary      `json:"personal_records"`
	RecentTrainingLoad *LoadAnalysis        `json:"recent_training_load"`
	TSSComparison      *VendorComparison    `json:"tss_comparison_recent"`
	PotentialFTPTests  []FTPTest            `json:"potential_ftp_tests"`
	Recommendations    *Recommendations     `json:"training_recommendations"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

type MetricsStatus struct {
	repository.MetricsCounts
	NativeCoverage float64 `json:"native_metrics_coverage"`
	CustomCoverage float64 `json:"custom_metrics_coverage"`
}
