package athlete

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xslog"
)

// RecalculationWindow bounds the records rebuilt after an FTP change.
const RecalculationWindow = 30 * 24 * time.Hour

type Settings struct {
	repo       *repository.Repository
	calc       calculator.Service
	cache      storage.ReportCache
	defaultFTP int
	logger     *slog.Logger
	now        func() time.Time
}

var _ Service = (*Settings)(nil)

func New(
	repo *repository.Repository,
	calc calculator.Service,
	cache storage.ReportCache,
	defaultFTP int,
	logger *slog.Logger,
) *Settings {
	return &Settings{
		repo:       repo,
		calc:       calc,
		cache:      cache,
		defaultFTP: defaultFTP,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Settings) GetOrCreate(ctx context.Context, athleteID int64) (*repository.Settings, error) {
	return s.getOrCreate(ctx, athleteID, s.defaultFTP)
}

func (s *Settings) getOrCreate(ctx context.Context, athleteID int64, ftp int) (*repository.Settings, error) {
	if _, err := s.repo.Athletes.Get(ctx, athleteID); err != nil {
		return nil, err
	}

	settings, err := s.repo.Settings.Get(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	settings = repository.NewSettings(athleteID, ftp)
	settings.UpdatedAt = s.now()
	if err := s.repo.Settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("creating settings: %w", err)
	}
	return settings, nil
}

func (s *Settings) Update(ctx context.Context, athleteID int64, req UpdateSettingsRequest) (*repository.Settings, error) {
	if req.FTP <= 0 {
		return nil, ErrInvalidFTP
	}

	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	settings.FTP = req.FTP
	settings.MaxHeartrate = req.MaxHeartrate
	settings.RestingHeartrate = req.RestingHeartrate
	settings.Weight = req.Weight
	if req.AutoUpdateFTP != nil {
		settings.AutoUpdateFTP = *req.AutoUpdateFTP
	}
	if req.FTPTestDetection != nil {
		settings.FTPTestDetection = *req.FTPTestDetection
	}
	settings.UpdatedAt = s.now()

	if err := s.repo.Settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}

	s.invalidate(ctx, athleteID)
	return settings, nil
}

func (s *Settings) UpdateFTP(ctx context.Context, athleteID int64, req UpdateFTPRequest) (*FTPUpdate, error) {
	if req.NewFTP <= 0 {
		return nil, ErrInvalidFTP
	}

	// A first-time athlete starts at the requested FTP, so the difference is zero.
	settings, err := s.getOrCreate(ctx, athleteID, req.NewFTP)
	if err != nil {
		return nil, err
	}

	oldFTP := settings.FTP
	settings.FTP = req.NewFTP
	settings.UpdatedAt = s.now()
	if err := s.repo.Settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("updating settings: %w", err)
	}

	result := &FTPUpdate{
		OldFTP:     oldFTP,
		NewFTP:     req.NewFTP,
		Difference: req.NewFTP - oldFTP,
		Settings:   settings,
	}

	if req.RecalculateRecent {
		since := s.now().Add(-RecalculationWindow)

		deleted, err := s.repo.CustomMetrics.DeleteSince(ctx, athleteID, since)
		if err != nil {
			return nil, fmt.Errorf("clearing recent metrics: %w", err)
		}

		batch, err := s.calc.CalculateSince(ctx, athleteID, since, &req.NewFTP)
		if err != nil {
			return nil, fmt.Errorf("recalculating recent metrics: %w", err)
		}
		result.RecalculatedActivities = batch.Calculated

		s.logger.InfoContext(ctx, "recalculated metrics after ftp change",
			xslog.AthleteGroup(athleteID, req.NewFTP),
			xslog.Since(since),
			slog.Int64("deleted", deleted),
			xslog.BatchGroup(batch.Calculated, batch.Skipped, batch.Errors, batch.Total),
		)
	}

	s.invalidate(ctx, athleteID)
	return result, nil
}

func (s *Settings) Zones(ctx context.Context, athleteID int64) (*Zones, error) {
	settings, err := s.GetOrCreate(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return &Zones{
		FTP:          settings.FTP,
		MaxHeartrate: settings.MaxHeartrate,
		Power:        metrics.PowerZones(settings.FTP),
		HeartRate:    metrics.HeartRateZones(settings.MaxHeartrate),
	}, nil
}

// invalidate drops cached reports. Failures only cost freshness until the TTL.
func (s *Settings) invalidate(ctx context.Context, athleteID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReports(ctx, athleteID); err != nil {
		s.logger.WarnContext(ctx, "invalidating report cache", xslog.AthleteID(athleteID), xslog.Error(err))
	}
}
