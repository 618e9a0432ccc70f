package metrics

import "math"

type ActivityKind string

const (
	KindRide        ActivityKind = "Ride"
	KindVirtualRide ActivityKind = "VirtualRide"
	KindEBikeRide   ActivityKind = "EBikeRide"
	KindRun         ActivityKind = "Run"
	KindWalk        ActivityKind = "Walk"
)

func (k ActivityKind) IsCycling() bool {
	switch k {
	case KindRide, KindVirtualRide, KindEBikeRide:
		return true
	default:
		return false
	}
}

func (k ActivityKind) IsOnFoot() bool {
	return k == KindRun || k == KindWalk
}

const (
	minPlausibleNP = 50.0
	maxPlausibleNP = 600.0

	minPaceSecondsPerKM = 150.0
	maxPaceSecondsPerKM = 720.0
)

type PowerRecords struct {
	Best1Min  *int
	Best5Min  *int
	Best20Min *int
}

type DistanceRecords struct {
	Best1KM          *int
	Best5KM          *int
	Best10KM         *int
	BestHalfMarathon *int
	BestMarathon     *int
}

type multipliers struct {
	oneMin, fiveMin, twentyMin float64
}

type window struct {
	min, max float64
}

var (
	window1Min  = window{min: 100, max: 800}
	window5Min  = window{min: 100, max: 600}
	window20Min = window{min: 100, max: 500}
)

func multipliersFor(durationMinutes float64) multipliers {
	switch {
	case durationMinutes >= 20:
		return multipliers{oneMin: 1.35, fiveMin: 1.15, twentyMin: 1.00}
	case durationMinutes >= 5:
		return multipliers{oneMin: 1.20, fiveMin: 1.00, twentyMin: 0.95}
	default:
		return multipliers{oneMin: 1.00, fiveMin: 0.95, twentyMin: 0.85}
	}
}

// EstimatePowerRecords scales normalized power into 1, 5 and 20 minute
// bests. Implausible inputs yield an empty result.
func EstimatePowerRecords(kind ActivityKind, durationMinutes float64, normalizedPower *float64) PowerRecords {
	if !kind.IsCycling() || normalizedPower == nil {
		return PowerRecords{}
	}
	np := *normalizedPower
	if np > maxPlausibleNP || np < minPlausibleNP {
		return PowerRecords{}
	}
	if durationMinutes <= 0 {
		return PowerRecords{}
	}

	m := multipliersFor(durationMinutes)
	return PowerRecords{
		Best1Min:  clamp(np*m.oneMin, window1Min),
		Best5Min:  clamp(np*m.fiveMin, window5Min),
		Best20Min: clamp(np*m.twentyMin, window20Min),
	}
}

func clamp(watts float64, w window) *int {
	v := math.Round(watts)
	if v < w.min || v > w.max {
		return nil
	}
	i := int(v)
	return &i
}

type distanceBucket struct {
	canonical float64
	low, high float64
	set       func(*DistanceRecords, *int)
}

var distanceBuckets = []distanceBucket{
	{canonical: 1, low: 0.8, high: 1.2, set: func(r *DistanceRecords, s *int) { r.Best1KM = s }},
	{canonical: 5, low: 4.5, high: 5.5, set: func(r *DistanceRecords, s *int) { r.Best5KM = s }},
	{canonical: 10, low: 9.5, high: 10.5, set: func(r *DistanceRecords, s *int) { r.Best10KM = s }},
	{canonical: 21.1, low: 20.0, high: 22.0, set: func(r *DistanceRecords, s *int) { r.BestHalfMarathon = s }},
	{canonical: 42.2, low: 40.0, high: 43.0, set: func(r *DistanceRecords, s *int) { r.BestMarathon = s }},
}

// DetectDistanceRecords normalizes an on-foot effort to the standard race
// distance its length falls into. At most one field is populated.
func DetectDistanceRecords(kind ActivityKind, distanceKM float64, timeSeconds int) DistanceRecords {
	var out DistanceRecords
	if !kind.IsOnFoot() || distanceKM <= 0 || timeSeconds <= 0 {
		return out
	}

	t := float64(timeSeconds)
	pace := t / distanceKM
	if pace < minPaceSecondsPerKM || pace > maxPaceSecondsPerKM {
		return out
	}

	for _, b := range distanceBuckets {
		if distanceKM < b.low || distanceKM > b.high {
			continue
		}
		normalized := int(math.Round(t * (b.canonical / distanceKM)))
		b.set(&out, &normalized)
		break
	}
	return out
}
