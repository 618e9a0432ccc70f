package metrics

import (
	"fmt"
	"math"
)

type Zone string

const (
	ZoneRecovery      Zone = "recovery"
	ZoneEndurance     Zone = "endurance"
	ZoneTempo         Zone = "tempo"
	ZoneThreshold     Zone = "threshold"
	ZoneThresholdPlus Zone = "threshold_plus"
	ZoneUnknown       Zone = "unknown"
)

// Zones lists the classified zones in ascending intensity.
var Zones = []Zone{ZoneRecovery, ZoneEndurance, ZoneTempo, ZoneThreshold, ZoneThresholdPlus}

func (z Zone) String() string { return string(z) }

// CustomTSS returns the single-block training stress score, or nil when any
// input is missing or non-positive.
func CustomTSS(normalizedPower *float64, durationHours *float64, ftp *int) *float64 {
	if normalizedPower == nil || durationHours == nil || ftp == nil {
		return nil
	}
	if *ftp <= 0 || *durationHours <= 0 {
		return nil
	}

	f := float64(*ftp)
	np := *normalizedPower
	intensity := np / f
	tss := Round(*durationHours*np*intensity/f*100, 1)
	return &tss
}

func IntensityFactor(normalizedPower *float64, ftp *int) *float64 {
	if normalizedPower == nil || ftp == nil || *ftp <= 0 {
		return nil
	}
	v := Round(*normalizedPower/float64(*ftp), 4)
	return &v
}

// TrainingLoad mirrors the TSS until a separate load model exists.
func TrainingLoad(tss *float64) *float64 {
	if tss == nil {
		return nil
	}
	v := *tss
	return &v
}

func PowerZoneFor(intensityFactor *float64) Zone {
	if intensityFactor == nil {
		return ZoneUnknown
	}
	return ZoneFor(*intensityFactor)
}

// ZoneFor classifies a known intensity factor. Bounds are lower-inclusive.
func ZoneFor(intensityFactor float64) Zone {
	switch {
	case intensityFactor >= 1.05:
		return ZoneThresholdPlus
	case intensityFactor >= 0.95:
		return ZoneThreshold
	case intensityFactor >= 0.85:
		return ZoneTempo
	case intensityFactor >= 0.70:
		return ZoneEndurance
	default:
		return ZoneRecovery
	}
}

// FormatPace renders seconds over a distance as "M:SS/km".
func FormatPace(timeSeconds float64, distanceKM float64) *string {
	if timeSeconds == 0 || distanceKM <= 0 {
		return nil
	}
	pace := timeSeconds / distanceKM
	minutes := int(math.Floor(pace / 60))
	seconds := int(math.Floor(math.Mod(pace, 60)))
	s := fmt.Sprintf("%d:%02d/km", minutes, seconds)
	return &s
}

// FormatPacePtr is FormatPace for an optional integer time.
func FormatPacePtr(timeSeconds *int, distanceKM float64) *string {
	if timeSeconds == nil {
		return nil
	}
	return FormatPace(float64(*timeSeconds), distanceKM)
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// HoursFromSeconds converts moving time to hours at the stored precision.
func HoursFromSeconds(seconds int) float64 {
	return Round(float64(seconds)/3600, 2)
}
