package athlete_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/ptr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

type fixture struct {
	repo      *repository.Repository
	svc       *athlete.Settings
	calc      *calculator.Calculator
	cache     *storage.MemoryBackend
	athleteID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testutil.NewLogger(t)
	repo := repository.New(testutil.OpenDB(t))
	id, err := repo.Athletes.Create(context.Background(), &repository.Athlete{Username: "rider"})
	if err != nil {
		t.Fatalf("create athlete: %v", err)
	}
	cache := storage.NewMemoryBackend(10, 10)
	t.Cleanup(func() { _ = cache.Close() })
	calc := calculator.New(repo, cache, calculator.Config{DefaultFTP: 245}, logger)
	return &fixture{
		repo:      repo,
		svc:       athlete.New(repo, calc, cache, 245, logger),
		calc:      calc,
		cache:     cache,
		athleteID: id,
	}
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	got, err := f.svc.GetOrCreate(ctx, f.athleteID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if got.FTP != 245 || !got.AutoUpdateFTP || !got.FTPTestDetection {
		t.Errorf("GetOrCreate() = %+v, want defaults", got)
	}

	if _, err := f.svc.GetOrCreate(ctx, f.athleteID+1); !errors.Is(err, repository.ErrAthleteNotFound) {
		t.Errorf("GetOrCreate(missing) error = %v, want ErrAthleteNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Update(ctx, f.athleteID, athlete.UpdateSettingsRequest{FTP: 0}); !errors.Is(err, athlete.ErrInvalidFTP) {
		t.Fatalf("Update(ftp=0) error = %v, want ErrInvalidFTP", err)
	}

	got, err := f.svc.Update(ctx, f.athleteID, athlete.UpdateSettingsRequest{
		FTP:           270,
		MaxHeartrate:  ptr.Ref(188),
		AutoUpdateFTP: ptr.Ref(false),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	stored, err := f.repo.Settings.Get(ctx, f.athleteID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.FTP != 270 || ptr.Value(stored.MaxHeartrate) != 188 || stored.AutoUpdateFTP || !stored.FTPTestDetection {
		t.Errorf("stored settings = %+v, returned %+v", stored, got)
	}
}

func TestUpdateSettingsRequestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		req  athlete.UpdateSettingsRequest
		want []string
	}{
		{name: "valid", req: athlete.UpdateSettingsRequest{FTP: 250}},
		{name: "missing ftp", req: athlete.UpdateSettingsRequest{}, want: []string{"ftp"}},
		{
			name: "negative optionals",
			req:  athlete.UpdateSettingsRequest{FTP: 250, Weight: ptr.Ref(-1.0), MaxHeartrate: ptr.Ref(0)},
			want: []string{"max_heartrate", "weight"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.req.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want keys %v", got, tt.want)
			}
			for _, k := range tt.want {
				if _, ok := got[k]; !ok {
					t.Errorf("Validate() missing key %q in %v", k, got)
				}
			}
		})
	}
}

func TestUpdateFTPRecalculatesRecent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	insert := func(externalID int64, start time.Time) int64 {
		id, err := f.repo.Activities.Upsert(ctx, &repository.Activity{
			AthleteID:         f.athleteID,
			ExternalID:        externalID,
			Type:              "Ride",
			StartDate:         start,
			StartDateLocal:    start,
			MovingTimeSeconds: 3600,
		})
		if err != nil {
			t.Fatalf("upsert activity: %v", err)
		}
		if err := f.repo.Activities.UpsertNative(ctx, &repository.NativeMetrics{ActivityID: id, WeightedAverageWatts: ptr.Ref(200.0)}); err != nil {
			t.Fatalf("upsert native: %v", err)
		}
		return id
	}
	old := insert(1, now.AddDate(0, 0, -45))
	recent := insert(2, now.AddDate(0, 0, -3))

	if _, err := f.svc.Update(ctx, f.athleteID, athlete.UpdateSettingsRequest{FTP: 250}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if _, err := f.calc.CalculateAll(ctx, f.athleteID, nil); err != nil {
		t.Fatalf("CalculateAll() error = %v", err)
	}
	if err := f.cache.SetReport(ctx, f.athleteID, "dashboard", map[string]int{"x": 1}, time.Minute); err != nil {
		t.Fatalf("SetReport() error = %v", err)
	}

	got, err := f.svc.UpdateFTP(ctx, f.athleteID, athlete.UpdateFTPRequest{NewFTP: 280, RecalculateRecent: true})
	if err != nil {
		t.Fatalf("UpdateFTP() error = %v", err)
	}
	if got.OldFTP != 250 || got.NewFTP != 280 || got.Difference != 30 || got.RecalculatedActivities != 1 {
		t.Errorf("UpdateFTP() = %+v", got)
	}

	for _, tc := range []struct {
		id      int64
		wantFTP int
	}{{old, 250}, {recent, 280}} {
		m, err := f.repo.CustomMetrics.Get(ctx, tc.id, f.athleteID)
		if err != nil || m == nil {
			t.Fatalf("Get(%d) = %v, %v", tc.id, m, err)
		}
		if m.UserFTP != tc.wantFTP {
			t.Errorf("activity %d UserFTP = %d, want %d", tc.id, m.UserFTP, tc.wantFTP)
		}
	}

	var cached map[string]int
	if err := f.cache.GetReport(ctx, f.athleteID, "dashboard", &cached); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetReport() error = %v, want ErrNotFound after FTP change", err)
	}
}

func TestUpdateFTPFirstTime(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	got, err := f.svc.UpdateFTP(context.Background(), f.athleteID, athlete.UpdateFTPRequest{NewFTP: 300})
	if err != nil {
		t.Fatalf("UpdateFTP() error = %v", err)
	}
	if got.OldFTP != 300 || got.Difference != 0 || got.RecalculatedActivities != 0 {
		t.Errorf("UpdateFTP() = %+v", got)
	}
}

func TestZones(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Update(ctx, f.athleteID, athlete.UpdateSettingsRequest{FTP: 250}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := f.svc.Zones(ctx, f.athleteID)
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}
	want := &athlete.Zones{
		FTP: 250,
		Power: []metrics.ZoneRange{
			{Zone: "Z1", Name: "active_recovery", Min: 0, Max: ptr.Ref(138)},
			{Zone: "Z2", Name: "endurance", Min: 139, Max: ptr.Ref(188)},
			{Zone: "Z3", Name: "tempo", Min: 189, Max: ptr.Ref(225)},
			{Zone: "Z4", Name: "threshold", Min: 226, Max: ptr.Ref(263)},
			{Zone: "Z5", Name: "vo2max", Min: 264},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Zones() mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.svc.Update(ctx, f.athleteID, athlete.UpdateSettingsRequest{FTP: 250, MaxHeartrate: ptr.Ref(190)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err = f.svc.Zones(ctx, f.athleteID)
	if err != nil {
		t.Fatalf("Zones() error = %v", err)
	}
	if len(got.HeartRate) != 5 || ptr.Value(got.HeartRate[0].Max) != 129 {
		t.Errorf("HeartRate = %+v, want 5 zones starting below 129 bpm", got.HeartRate)
	}
}
