package athlete

import (
	"context"
	"errors"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
)

var ErrInvalidFTP = errors.New("ftp must be a positive integer")

type Service interface {
	// GetOrCreate returns the athlete's settings, storing defaults on first use.
	// Returns repository.ErrAthleteNotFound for unknown athletes.
	GetOrCreate(ctx context.Context, athleteID int64) (*repository.Settings, error)

	// Update replaces the athlete's settings.
	Update(ctx context.Context, athleteID int64, req UpdateSettingsRequest) (*repository.Settings, error)

	// UpdateFTP changes the FTP and optionally recomputes the metrics of the
	// last RecalculationWindow with the new value.
	UpdateFTP(ctx context.Context, athleteID int64, req UpdateFTPRequest) (*FTPUpdate, error)

	Zones(ctx context.Context, athleteID int64) (*Zones, error)
}

type UpdateSettingsRequest struct {
	FTP              int      `json:"ftp"`
	MaxHeartrate     *int     `json:"max_heartrate"`
	RestingHeartrate *int     `json:"resting_heartrate"`
	Weight           *float64 `json:"weight"`
	AutoUpdateFTP    *bool    `json:"auto_update_ftp"`
	FTPTestDetection *bool    `json:"ftp_test_detection"`
}

func (r UpdateSettingsRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.FTP <= 0 {
		errs["ftp"] = ErrInvalidFTP.Error()
	}
	if r.MaxHeartrate != nil && *r.MaxHeartrate <= 0 {
		errs["max_heartrate"] = "must be positive"
	}
	if r.RestingHeartrate != nil && *r.RestingHeartrate <= 0 {
		errs["resting_heartrate"] = "must be positive"
	}
	if r.Weight != nil && *r.Weight <= 0 {
		errs["weight"] = "must be positive"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type UpdateFTPRequest struct {
	NewFTP            int  `json:"new_ftp"`
	RecalculateRecent bool `json:"recalculate_recent"`
}

func (r UpdateFTPRequest) Validate() map[string]string {
	if r.NewFTP <= 0 {
		return map[string]string{"new_ftp": ErrInvalidFTP.Error()}
	}
	return nil
}

type FTPUpdate struct {
	OldFTP                 int                  `json:"old_ftp"`
	NewFTP                 int                  `json:"new_ftp"`
	Difference             int                  `json:"difference"`
	RecalculatedActivities int                  `json:"recalculated_activities"`
	Settings               *repository.Settings `json:"settings"`
}

// Zones holds training zones derived from the athlete's settings. HeartRate
// is nil until a max heart rate is stored.
type Zones struct {
	FTP          int                 `json:"ftp"`
	MaxHeartrate *int                `json:"max_heartrate"`
	Power        []metrics.ZoneRange `json:"power_zones"`
	HeartRate    []metrics.ZoneRange `json:"heart_rate_zones"`
}
