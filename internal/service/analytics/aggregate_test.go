package analytics

import (
	"testing"
	"time"

	"github.com/garrettladley/fitmetrics/internal/ptr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/google/go-cmp/cmp"
)

var monday = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

type rowOpt func(*repository.MetricsRow)

func withTSS(tss, intensity float64) rowOpt {
	return func(r *repository.MetricsRow) {
		r.Custom.CustomTSS = ptr.Ref(tss)
		r.Custom.IntensityFactor = ptr.Ref(intensity)
	}
}

func withPower(p1, p5, p20 int) rowOpt {
	return func(r *repository.MetricsRow) {
		r.Custom.Best1MinPower = ptr.Ref(p1)
		r.Custom.Best5MinPower = ptr.Ref(p5)
		r.Custom.Best20MinPower = ptr.Ref(p20)
	}
}

func withSuffer(score float64) rowOpt {
	return func(r *repository.MetricsRow) {
		r.Native = &repository.NativeMetrics{SufferScore: ptr.Ref(score), WeightedAverageWatts: ptr.Ref(220.0)}
	}
}

func row(id int64, start time.Time, typ string, movingSeconds int, opts ...rowOpt) repository.MetricsRow {
	r := repository.MetricsRow{
		Activity: repository.Activity{
			ID:                id,
			Name:              "activity",
			Type:              typ,
			StartDateLocal:    start,
			MovingTimeSeconds: movingSeconds,
			DistanceKM:        20,
		},
		Custom: repository.CustomMetrics{ActivityID: id, UserFTP: 250},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func TestBuildLoadAnalysis(t *testing.T) {
	t.Parallel()

	if got := BuildLoadAnalysis(nil, 30); got != nil {
		t.Fatalf("BuildLoadAnalysis(nil) = %+v, want nil", got)
	}

	rows := []repository.MetricsRow{
		row(1, monday.AddDate(0, 0, 7), "Ride", 3600, withTSS(200, 1.0)),
		row(2, monday, "Ride", 3600, withTSS(100, 0.8)),
		row(3, monday.AddDate(0, 0, 1), "Run", 1800),
	}

	want := &LoadAnalysis{
		PeriodDays:      30,
		TotalActivities: 3,
		Load: LoadSummary{
			TotalTSS:          300,
			AvgTSSPerActivity: 100,
			MaxTSSSingle:      200,
			AvgWeeklyTSS:      150,
		},
		Intensity: IntensityDistribution{
			AvgIntensityFactor: 0.9,
			ZonesCount: map[string]int{
				"recovery": 0, "endurance": 1, "tempo": 0, "threshold": 1, "threshold_plus": 0,
			},
			ZonesPercentage: map[string]float64{
				"recovery": 0, "endurance": 50, "tempo": 0, "threshold": 50, "threshold_plus": 0,
			},
		},
		WeeklyProgression: []WeeklyTSS{
			{Week: "2025-W10", TSS: 100},
			{Week: "2025-W11", TSS: 200},
		},
	}

	if diff := cmp.Diff(want, BuildLoadAnalysis(rows, 30)); diff != "" {
		t.Errorf("BuildLoadAnalysis() mismatch (-want +got):\n%s", diff)
	}
}

func TestISOWeekCrossesYear(t *testing.T) {
	t.Parallel()
	if got := isoWeek(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)); got != "2025-W01" {
		t.Errorf("isoWeek() = %q, want 2025-W01", got)
	}
}

func TestConsistencyScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{name: "no weeks", counts: nil, want: 50},
		{name: "one week", counts: []int{4}, want: 50},
		{name: "perfectly even", counts: []int{3, 3, 3}, want: 100},
		{name: "variance one", counts: []int{1, 3}, want: 90},
		{name: "floored at zero", counts: []int{0, 10}, want: 0},
		{name: "fractional variance", counts: []int{1, 2, 2}, want: 97.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ConsistencyScore(tt.counts); got != tt.want {
				t.Errorf("ConsistencyScore(%v) = %v, want %v", tt.counts, got, tt.want)
			}
		})
	}
}

func TestDetectFTPTests(t *testing.T) {
	t.Parallel()
	rows := []repository.MetricsRow{
		row(1, monday, "Ride", 1500, withTSS(40, 0.97), withPower(400, 340, 300)),
		row(2, monday, "Ride", 1200, withTSS(40, 1.02)),
		row(3, monday, "Ride", 1900, withTSS(40, 1.10)),
		row(4, monday, "Ride", 1500, withTSS(40, 0.90)),
		row(5, monday, "Ride", 1800),
	}

	want := []FTPTest{
		{
			ActivityID:      2,
			ActivityName:    "activity",
			Date:            "2025-03-03",
			DurationMinutes: 20,
			IntensityFactor: 1.02,
			CurrentFTP:      250,
		},
		{
			ActivityID:          1,
			ActivityName:        "activity",
			Date:                "2025-03-03",
			DurationMinutes:     25,
			IntensityFactor:     0.97,
			Estimated20MinPower: ptr.Ref(300),
			EstimatedFTP:        ptr.Ref(285),
			CurrentFTP:          250,
			FTPImprovement:      ptr.Ref(35),
		},
	}

	if diff := cmp.Diff(want, DetectFTPTests(rows)); diff != "" {
		t.Errorf("DetectFTPTests() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPowerCurve(t *testing.T) {
	t.Parallel()

	if got := BuildPowerCurve([]repository.MetricsRow{row(1, monday, "Run", 1800)}); got != nil {
		t.Fatalf("BuildPowerCurve(no power) = %+v, want nil", got)
	}

	rows := []repository.MetricsRow{
		row(1, monday, "Ride", 3600, withPower(405, 345, 300)),
		row(2, monday, "Ride", 600, withPower(420, 330, 290)),
	}
	want := &PowerCurve{
		Points: []PowerPoint{
			{DurationSeconds: 60, Power: 420},
			{DurationSeconds: 300, Power: 345},
			{DurationSeconds: 1200, Power: 300},
		},
		EstimatedFTP:   ptr.Ref(285),
		PeakPower1Min:  420,
		PeakPower5Min:  345,
		PeakPower20Min: 300,
	}
	if diff := cmp.Diff(want, BuildPowerCurve(rows)); diff != "" {
		t.Errorf("BuildPowerCurve() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRecordsSummary(t *testing.T) {
	t.Parallel()

	fiveK := func(secs int) rowOpt {
		return func(r *repository.MetricsRow) { r.Custom.Best5KMTime = ptr.Ref(secs) }
	}
	rows := []repository.MetricsRow{
		row(1, monday, "Ride", 3600, withTSS(64, 0.8), withPower(405, 345, 300)),
		row(2, monday, "Run", 1500, fiveK(1500)),
		row(3, monday, "Run", 1600, fiveK(0)),
		row(4, monday, "Ride", 3600, withTSS(100, 1.0)),
	}

	want := &RecordsSummary{
		Power: PowerRecordsSummary{
			Best1MinPower:         ptr.Ref(405),
			Best5MinPower:         ptr.Ref(345),
			Best20MinPower:        ptr.Ref(300),
			EstimatedFTPFrom20Min: ptr.Ref(285),
		},
		Distance: DistanceRecordsSummary{
			Best5KMTime: ptr.Ref(1500),
			Best5KMPace: ptr.Ref("5:00/km"),
		},
		Training: TrainingStats{
			AvgTSS:                  ptr.Ref(82.0),
			MaxTSS:                  ptr.Ref(100.0),
			AvgIntensityFactor:      ptr.Ref(0.9),
			TotalActivitiesAnalyzed: 4,
		},
	}
	if diff := cmp.Diff(want, BuildRecordsSummary(rows)); diff != "" {
		t.Errorf("BuildRecordsSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildVendorComparison(t *testing.T) {
	t.Parallel()
	rows := []repository.MetricsRow{
		row(1, monday.AddDate(0, 0, 2), "Ride", 3600, withTSS(110, 0.9), withSuffer(100)),
		row(2, monday.AddDate(0, 0, 1), "Ride", 3600, withTSS(60, 0.8)),
		row(3, monday, "Ride", 3600, withTSS(52, 0.8), withSuffer(50)),
		row(4, monday.AddDate(0, 0, -1), "Ride", 3600, withTSS(40, 0.7), withSuffer(60)),
	}

	got := BuildVendorComparison(rows, 2)
	if got == nil {
		t.Fatal("BuildVendorComparison() = nil")
	}
	wantSummary := VendorComparisonSummary{
		ActivitiesCompared: 2,
		AvgStravaTSS:       75,
		AvgCustomTSS:       81,
		AvgDifference:      6,
		AvgPercentageDiff:  8,
		UserFTP:            250,
	}
	if diff := cmp.Diff(wantSummary, got.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
	if len(got.Comparisons) != 2 || got.Comparisons[0].ActivityID != 1 || got.Comparisons[1].ActivityID != 3 {
		t.Fatalf("Comparisons = %+v, want activities 1 and 3", got.Comparisons)
	}
	if c := got.Comparisons[0]; c.Difference != 10 || c.PercentageDiff != 10 {
		t.Errorf("first comparison = %+v", c)
	}

	if got := BuildVendorComparison(rows[1:2], 10); got != nil {
		t.Errorf("BuildVendorComparison(no suffer score) = %+v, want nil", got)
	}
}

func TestExplainDifference(t *testing.T) {
	t.Parallel()
	tests := []struct {
		diff float64
		want string
	}{
		{diff: 4.9, want: "Similar TSS - Strava's estimated FTP is close to yours"},
		{diff: -4.9, want: "Similar TSS - Strava's estimated FTP is close to yours"},
		{diff: 12.34, want: "Your TSS +12.3 - Strava underestimates your effort (Strava FTP > 250W)"},
		{diff: -5, want: "Your TSS -5.0 - Strava overestimates your effort (Strava FTP < 250W)"},
	}
	for _, tt := range tests {
		if got := ExplainDifference(tt.diff, 250); got != tt.want {
			t.Errorf("ExplainDifference(%v) = %q, want %q", tt.diff, got, tt.want)
		}
	}
}

func TestBuildTrainingPatterns(t *testing.T) {
	t.Parallel()
	rows := []repository.MetricsRow{
		row(1, monday, "Ride", 3600, withTSS(100, 0.8)),
		row(2, monday.AddDate(0, 0, 7), "Ride", 3600, withTSS(50, 0.6)),
		row(3, monday.AddDate(0, 0, 8), "Run", 1800),
	}

	got := BuildTrainingPatterns(rows, 14)
	if got == nil {
		t.Fatal("BuildTrainingPatterns() = nil")
	}
	if got.WeeklyAvgActivities != 1.5 {
		t.Errorf("WeeklyAvgActivities = %v, want 1.5", got.WeeklyAvgActivities)
	}
	if got.ConsistencyScore != 97.5 {
		t.Errorf("ConsistencyScore = %v, want 97.5", got.ConsistencyScore)
	}
	wantMonday := DayPattern{Count: 2, TotalTSS: 150, TotalIF: 1.4, AvgTSS: 75, AvgIF: 0.7}
	if diff := cmp.Diff(wantMonday, got.DayOfWeek["Monday"]); diff != "" {
		t.Errorf("Monday mismatch (-want +got):\n%s", diff)
	}
	wantRide := TypePattern{Count: 2, TotalTSS: 150, TotalDistance: 40}
	if diff := cmp.Diff(wantRide, got.ActivityType["Ride"]); diff != "" {
		t.Errorf("Ride mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	analysis := func(totalTSS, avgIF float64, zones map[string]int) *LoadAnalysis {
		return &LoadAnalysis{
			Load:      LoadSummary{TotalTSS: totalTSS},
			Intensity: IntensityDistribution{AvgIntensityFactor: avgIF, ZonesCount: zones},
		}
	}

	tests := []struct {
		name     string
		analysis *LoadAnalysis
		want     *Recommendations
	}{
		{
			name:     "no data",
			analysis: nil,
			want: &Recommendations{
				Recommendations: []string{setupRecommendation},
				FocusAreas:      []string{},
			},
		},
		{
			name:     "easy and light",
			analysis: analysis(150, 0.6, map[string]int{"recovery": 3}),
			want: &Recommendations{
				AnalysisPeriod:  "last 14 days",
				Recommendations: []string{"Raise the average intensity of your sessions", "Increase training volume"},
				FocusAreas:      []string{"Include more work in zones 3-4", "Add long endurance sessions"},
				NextWorkout:     &intensitySession,
				CurrentForm:     "Form to develop - build up gradually",
			},
		},
		{
			name:     "hard and heavy",
			analysis: analysis(600, 0.95, map[string]int{"threshold_plus": 3, "threshold": 2}),
			want: &Recommendations{
				AnalysisPeriod:  "last 14 days",
				Recommendations: []string{"Include more active recovery", "Plan a recovery week"},
				FocusAreas:      []string{"Sessions in zones 1-2 for recovery", "Reduce intensity and volume"},
				NextWorkout:     &activeRecovery,
				CurrentForm:     "Excellent form - maintain the level",
			},
		},
		{
			name:     "balanced",
			analysis: analysis(350, 0.78, map[string]int{"endurance": 4, "threshold": 1}),
			want: &Recommendations{
				AnalysisPeriod:  "last 14 days",
				Recommendations: []string{},
				FocusAreas:      []string{},
				NextWorkout:     &balancedEndurance,
				CurrentForm:     "Good form - room to increase slightly",
			},
		},
		{
			name:     "moderate",
			analysis: analysis(250, 0.72, map[string]int{}),
			want: &Recommendations{
				AnalysisPeriod:  "last 14 days",
				Recommendations: []string{},
				FocusAreas:      []string{},
				NextWorkout:     &balancedEndurance,
				CurrentForm:     "Moderate form - keep building consistently",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, Recommend(tt.analysis, 14)); diff != "" {
				t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
