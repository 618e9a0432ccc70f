package metrics

import "math"

type ZoneRange struct {
	Zone string `json:"zone"`
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  *int   `json:"max"`
}

type zoneBound struct {
	zone, name string
	pct        float64
}

var powerZoneBounds = []zoneBound{
	{"Z1", "active_recovery", 0.55},
	{"Z2", "endurance", 0.75},
	{"Z3", "tempo", 0.90},
	{"Z4", "threshold", 1.05},
	{"Z5", "vo2max", 0},
}

// PowerZones returns watt ranges derived from FTP. The last zone is open-ended.
func PowerZones(ftp int) []ZoneRange {
	if ftp <= 0 {
		return nil
	}
	return ladder(float64(ftp), powerZoneBounds)
}

var heartRateZoneBounds = []zoneBound{
	{"Z1", "recovery", 0.68},
	{"Z2", "aerobic", 0.83},
	{"Z3", "tempo", 0.94},
	{"Z4", "threshold", 1.05},
	{"Z5", "anaerobic", 0},
}

// HeartRateZones returns bpm ranges derived from max heart rate.
func HeartRateZones(maxHeartRate *int) []ZoneRange {
	if maxHeartRate == nil || *maxHeartRate <= 0 {
		return nil
	}
	return ladder(float64(*maxHeartRate), heartRateZoneBounds)
}

func ladder(base float64, bounds []zoneBound) []ZoneRange {
	out := make([]ZoneRange, 0, len(bounds))
	low := 0
	for _, b := range bounds {
		r := ZoneRange{Zone: b.zone, Name: b.name, Min: low}
		if b.pct > 0 {
			high := int(math.Round(base * b.pct))
			r.Max = &high
			low = high + 1
		}
		out = append(out, r)
	}
	return out
}
