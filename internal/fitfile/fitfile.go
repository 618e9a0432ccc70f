// Package fitfile reads activity summaries from Garmin FIT files.
package fitfile

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"os"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/tormoder/fit"
)

var ErrNoSession = errors.New("fit file has no session message")

// Import is a decoded activity ready to be stored.
type Import struct {
	Activity *repository.Activity
	Native   *repository.NativeMetrics
}

func ReadFile(path string, athleteID int64) (*Import, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fit file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, athleteID)
}

// Decode maps the first session of an activity file onto an activity and its
// native metrics.
func Decode(r io.Reader, athleteID int64) (*Import, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode fit file: %w", err)
	}
	af, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity fit file expected: %w", err)
	}
	if len(af.Sessions) == 0 {
		return nil, ErrNoSession
	}
	s := af.Sessions[0]

	start := validTime(s.StartTime)
	if start.IsZero() {
		start = validTime(decoded.FileId.TimeCreated)
	}
	start = start.UTC()
	local := start
	if a := af.Activity; a != nil && !validTime(a.LocalTimestamp).IsZero() && !validTime(a.Timestamp).IsZero() {
		local = start.Add(a.LocalTimestamp.Sub(a.Timestamp))
	}

	typ := activityType(s.Sport)
	moving := int(math.Round(positive(s.GetTotalTimerTimeScaled())))
	elapsed := int(math.Round(positive(s.GetTotalElapsedTimeScaled())))
	if elapsed == 0 {
		elapsed = moving
	}

	activity := &repository.Activity{
		AthleteID:          athleteID,
		ExternalID:         ExternalID(decoded.FileId.SerialNumber, decoded.FileId.TimeCreated),
		Name:               fmt.Sprintf("%s %s", typ, local.Format(time.DateOnly)),
		Type:               typ,
		SportType:          typ,
		StartDate:          start,
		StartDateLocal:     local,
		DistanceKM:         metrics.Round(positive(s.GetTotalDistanceScaled())/1000, 2),
		MovingTimeSeconds:  moving,
		ElapsedTimeSeconds: elapsed,
		AverageSpeed:       optional(positive(s.GetAvgSpeedScaled())),
		MaxSpeed:           optional(positive(s.GetMaxSpeedScaled())),
		TotalElevationGain: optional(float64(validUint16(s.TotalAscent))),
		AverageHeartrate:   optional(float64(validUint8(s.AvgHeartRate))),
		MaxHeartrate:       optionalInt(int(validUint8(s.MaxHeartRate))),
		Calories:           optional(float64(validUint16(s.TotalCalories))),
	}

	native := &repository.NativeMetrics{
		AverageWatts:         optional(float64(validUint16(s.AvgPower))),
		WeightedAverageWatts: optional(float64(validUint16(s.NormalizedPower))),
		MaxWatts:             optional(float64(validUint16(s.MaxPower))),
		AverageHeartrate:     activity.AverageHeartrate,
		MaxHeartrate:         optional(float64(validUint8(s.MaxHeartRate))),
		AverageCadence:       optional(float64(validUint8(s.AvgCadence))),
	}
	native.DeviceWatts = native.WeightedAverageWatts != nil
	native.HasHeartrate = native.AverageHeartrate != nil

	return &Import{Activity: activity, Native: native}, nil
}

// Save upserts the activity and its native metrics, returning the stored id.
func Save(ctx context.Context, activities repository.ActivityRepository, imp *Import) (int64, error) {
	id, err := activities.Upsert(ctx, imp.Activity)
	if err != nil {
		return 0, err
	}
	imp.Native.ActivityID = id
	if err := activities.UpsertNative(ctx, imp.Native); err != nil {
		return 0, err
	}
	return id, nil
}

// ExternalID derives a stable id from the file id message. Imported ids are
// negative so they never collide with Strava activity ids.
func ExternalID(serial uint32, created time.Time) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%d", serial, created.Unix())
	return -int64(h.Sum64()>>1) - 1
}

func activityType(sport fit.Sport) string {
	switch sport {
	case fit.SportCycling:
		return string(metrics.KindRide)
	case fit.SportRunning:
		return string(metrics.KindRun)
	case fit.SportWalking:
		return string(metrics.KindWalk)
	default:
		return "Workout"
	}
}

func validTime(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func optional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func optionalInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
