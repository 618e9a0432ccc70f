package metrics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEstimatePowerRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    ActivityKind
		minutes float64
		np      *float64
		want    PowerRecords
	}{
		{
			name:    "long ride",
			kind:    KindRide,
			minutes: 25,
			np:      ptr(300.0),
			want:    PowerRecords{Best1Min: ptr(405), Best5Min: ptr(345), Best20Min: ptr(300)},
		},
		{
			name:    "medium virtual ride",
			kind:    KindVirtualRide,
			minutes: 10,
			np:      ptr(240.0),
			want:    PowerRecords{Best1Min: ptr(288), Best5Min: ptr(240), Best20Min: ptr(228)},
		},
		{
			name:    "short e-bike effort",
			kind:    KindEBikeRide,
			minutes: 3,
			np:      ptr(200.0),
			want:    PowerRecords{Best1Min: ptr(200), Best5Min: ptr(190), Best20Min: ptr(170)},
		},
		{
			name:    "estimates above their window are dropped",
			kind:    KindRide,
			minutes: 60,
			np:      ptr(540.0),
			want:    PowerRecords{Best1Min: ptr(729), Best5Min: nil, Best20Min: nil},
		},
		{
			name:    "low power falls below every window",
			kind:    KindRide,
			minutes: 60,
			np:      ptr(60.0),
			want:    PowerRecords{Best1Min: nil, Best5Min: nil, Best20Min: nil},
		},
		{
			name:    "implausibly high power",
			kind:    KindRide,
			minutes: 30,
			np:      ptr(700.0),
		},
		{
			name:    "sensor noise",
			kind:    KindRide,
			minutes: 30,
			np:      ptr(45.0),
		},
		{
			name:    "running never produces power",
			kind:    KindRun,
			minutes: 30,
			np:      ptr(250.0),
		},
		{
			name:    "missing power",
			kind:    KindRide,
			minutes: 30,
		},
		{
			name:    "zero duration",
			kind:    KindRide,
			minutes: 0,
			np:      ptr(250.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EstimatePowerRecords(tt.kind, tt.minutes, tt.np)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EstimatePowerRecords() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectDistanceRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     ActivityKind
		distance float64
		seconds  int
		want     DistanceRecords
	}{
		{
			name:     "ten kilometer run is pace normalized",
			kind:     KindRun,
			distance: 10.1,
			seconds:  2460,
			want:     DistanceRecords{Best10KM: ptr(2436)},
		},
		{
			name:     "one kilometer",
			kind:     KindRun,
			distance: 1.0,
			seconds:  240,
			want:     DistanceRecords{Best1KM: ptr(240)},
		},
		{
			name:     "five kilometer walk",
			kind:     KindWalk,
			distance: 5.0,
			seconds:  3000,
			want:     DistanceRecords{Best5KM: ptr(3000)},
		},
		{
			name:     "half marathon",
			kind:     KindRun,
			distance: 21.1,
			seconds:  6300,
			want:     DistanceRecords{BestHalfMarathon: ptr(6300)},
		},
		{
			name:     "marathon",
			kind:     KindRun,
			distance: 42.2,
			seconds:  14400,
			want:     DistanceRecords{BestMarathon: ptr(14400)},
		},
		{
			name:     "between buckets",
			kind:     KindRun,
			distance: 7.0,
			seconds:  2100,
		},
		{
			name:     "pace faster than floor",
			kind:     KindRun,
			distance: 5.0,
			seconds:  600,
		},
		{
			name:     "pace slower than ceiling",
			kind:     KindWalk,
			distance: 5.0,
			seconds:  3700,
		},
		{
			name:     "cycling is ignored",
			kind:     KindRide,
			distance: 10.0,
			seconds:  2400,
		},
		{
			name:     "zero distance",
			kind:     KindRun,
			distance: 0,
			seconds:  2400,
		},
		{
			name:     "zero time",
			kind:     KindRun,
			distance: 10,
			seconds:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DetectDistanceRecords(tt.kind, tt.distance, tt.seconds)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectDistanceRecords() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDistanceBucketsFillTheirOwnField(t *testing.T) {
	t.Parallel()

	fields := map[float64]func(DistanceRecords) *int{
		1:    func(r DistanceRecords) *int { return r.Best1KM },
		5:    func(r DistanceRecords) *int { return r.Best5KM },
		10:   func(r DistanceRecords) *int { return r.Best10KM },
		21.1: func(r DistanceRecords) *int { return r.BestHalfMarathon },
		42.2: func(r DistanceRecords) *int { return r.BestMarathon },
	}
	if len(fields) != len(distanceBuckets) {
		t.Fatalf("%d buckets, want %d", len(distanceBuckets), len(fields))
	}

	for _, b := range distanceBuckets {
		field, ok := fields[b.canonical]
		if !ok {
			t.Fatalf("no record field for %v km", b.canonical)
		}
		seconds := int(math.Round(b.canonical * 300))
		got := DetectDistanceRecords(KindRun, b.canonical, seconds)
		if v := field(got); v == nil || *v != seconds {
			t.Errorf("%v km: field = %v, want %d", b.canonical, v, seconds)
		}
		filled := 0
		for _, f := range fields {
			if f(got) != nil {
				filled++
			}
		}
		if filled != 1 {
			t.Errorf("%v km: %d fields set, want 1", b.canonical, filled)
		}
	}
}

func TestPowerZones(t *testing.T) {
	t.Parallel()

	want := []ZoneRange{
		{Zone: "Z1", Name: "active_recovery", Min: 0, Max: ptr(110)},
		{Zone: "Z2", Name: "endurance", Min: 111, Max: ptr(150)},
		{Zone: "Z3", Name: "tempo", Min: 151, Max: ptr(180)},
		{Zone: "Z4", Name: "threshold", Min: 181, Max: ptr(210)},
		{Zone: "Z5", Name: "vo2max", Min: 211},
	}
	if diff := cmp.Diff(want, PowerZones(200)); diff != "" {
		t.Errorf("PowerZones(200) mismatch (-want +got):\n%s", diff)
	}
	if got := PowerZones(0); got != nil {
		t.Errorf("PowerZones(0) = %v, want nil", got)
	}
}

func TestHeartRateZones(t *testing.T) {
	t.Parallel()

	if got := HeartRateZones(nil); got != nil {
		t.Errorf("HeartRateZones(nil) = %v, want nil", got)
	}

	got := HeartRateZones(ptr(200))
	if len(got) != 5 {
		t.Fatalf("len(HeartRateZones(200)) = %d, want 5", len(got))
	}
	if got[0].Max == nil || *got[0].Max != 136 {
		t.Errorf("Z1 max = %v, want 136", got[0].Max)
	}
	if got[4].Max != nil {
		t.Errorf("Z5 max = %v, want open-ended", *got[4].Max)
	}
}
