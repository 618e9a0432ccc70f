package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type Config struct {
	DefaultFTP  int
	Concurrency int
}

type Calculator struct {
	repo        *repository.Repository
	cache       storage.ReportCache
	defaultFTP  int
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

var _ Service = (*Calculator)(nil)

// New builds a calculator. cache may be nil; when set, cached reports of an
// athlete are dropped whenever new records are written.
func New(repo *repository.Repository, cache storage.ReportCache, cfg Config, logger *slog.Logger) *Calculator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Calculator{
		repo:        repo,
		cache:       cache,
		defaultFTP:  cfg.DefaultFTP,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

func (c *Calculator) Calculate(ctx context.Context, activityID int64, athleteID int64, ftpOverride *int) (*repository.CustomMetrics, error) {
	activity, err := c.repo.Activities.Get(ctx, activityID)
	if errors.Is(err, repository.ErrActivityNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}
	if activity.AthleteID != athleteID {
		return nil, repository.ErrActivityNotFound
	}

	ftp, err := c.resolveFTP(ctx, athleteID, ftpOverride, false)
	if err != nil {
		return nil, err
	}

	m, created, err := c.calculate(ctx, activity, ftp)
	if err != nil {
		return nil, err
	}
	if created {
		c.invalidate(ctx, athleteID)
	}
	return m, nil
}

func (c *Calculator) CalculateAll(ctx context.Context, athleteID int64, ftpOverride *int) (*BatchResult, error) {
	return c.batch(ctx, athleteID, nil, ftpOverride)
}

func (c *Calculator) CalculateSince(ctx context.Context, athleteID int64, since time.Time, ftpOverride *int) (*BatchResult, error) {
	return c.batch(ctx, athleteID, &since, ftpOverride)
}

func (c *Calculator) batch(ctx context.Context, athleteID int64, since *time.Time, ftpOverride *int) (*BatchResult, error) {
	ftp, err := c.resolveFTP(ctx, athleteID, ftpOverride, true)
	if err != nil {
		return nil, err
	}

	activities, err := c.repo.Activities.ListByAthlete(ctx, athleteID, since)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	result := &BatchResult{Total: len(activities), UserFTP: ftp}
	var mu sync.Mutex

	// Items never return an error to the group so one failure cannot
	// cancel the rest.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range activities {
		activity := &activities[i]
		g.Go(func() error {
			_, created, err := c.calculate(gctx, activity, ftp)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Errors++
				result.Failures = append(result.Failures, ItemFailure{ActivityID: activity.ID, Reason: err.Error()})
				c.logger.WarnContext(ctx, "calculating activity metrics",
					xslog.AthleteGroup(athleteID, ftp),
					xslog.ActivityGroup(activity.ID, activity.Type, activity.StartDateLocal),
					xslog.Error(err),
				)
			case created:
				result.Calculated++
			default:
				result.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	if result.Calculated > 0 {
		c.invalidate(ctx, athleteID)
	}

	c.logger.InfoContext(ctx, "calculated activity metrics",
		xslog.AthleteGroup(athleteID, ftp),
		xslog.BatchGroup(result.Calculated, result.Skipped, result.Errors, result.Total),
	)

	return result, nil
}

// calculate reports whether the returned record was written by this call.
func (c *Calculator) calculate(ctx context.Context, activity *repository.Activity, ftp int) (*repository.CustomMetrics, bool, error) {
	existing, err := c.repo.CustomMetrics.Get(ctx, activity.ID, activity.AthleteID)
	if err != nil {
		return nil, false, fmt.Errorf("loading custom metrics: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	native, err := c.repo.Activities.GetNative(ctx, activity.ID)
	if err != nil {
		return nil, false, fmt.Errorf("loading native metrics: %w", err)
	}

	m := Compute(activity, native, ftp)
	m.CalculatedAt = c.now()

	id, err := c.repo.CustomMetrics.Insert(ctx, m)
	if errors.Is(err, repository.ErrConflict) {
		winner, err := c.repo.CustomMetrics.Get(ctx, activity.ID, activity.AthleteID)
		if err != nil {
			return nil, false, fmt.Errorf("loading custom metrics: %w", err)
		}
		if winner == nil {
			return nil, false, fmt.Errorf("custom metrics of activity %d vanished after conflict", activity.ID)
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storing custom metrics: %w", err)
	}
	m.ID = id
	return m, true, nil
}

// Compute derives a metrics record from an activity and its vendor metrics
// without touching storage.
func Compute(activity *repository.Activity, native *repository.NativeMetrics, ftp int) *repository.CustomMetrics {
	m := &repository.CustomMetrics{
		ActivityID:        activity.ID,
		AthleteID:         activity.AthleteID,
		UserFTP:           ftp,
		CalculationMethod: repository.CalculationMethodStravaBased,
	}

	var np *float64
	if native != nil {
		np = native.WeightedAverageWatts
	}

	hours := activity.MovingTimeHours()
	if np != nil {
		m.CustomTSS = metrics.CustomTSS(np, &hours, &ftp)
		m.IntensityFactor = metrics.IntensityFactor(np, &ftp)
		m.TrainingLoad = metrics.TrainingLoad(m.CustomTSS)
	}

	power := metrics.EstimatePowerRecords(activity.Kind(), hours*60, np)
	m.Best1MinPower = power.Best1Min
	m.Best5MinPower = power.Best5Min
	m.Best20MinPower = power.Best20Min

	dist := metrics.DetectDistanceRecords(activity.Kind(), activity.DistanceKM, activity.MovingTimeSeconds)
	m.Best1KMTime = dist.Best1KM
	m.Best5KMTime = dist.Best5KM
	m.Best10KMTime = dist.Best10KM
	m.BestHalfMarathonTime = dist.BestHalfMarathon
	m.BestMarathonTime = dist.BestMarathon

	return m
}

// resolveFTP picks the override, then stored settings, then the configured
// default. With create set, missing settings are stored with the default.
func (c *Calculator) resolveFTP(ctx context.Context, athleteID int64, override *int, create bool) (int, error) {
	if override != nil && *override > 0 {
		return *override, nil
	}

	settings, err := c.repo.Settings.Get(ctx, athleteID)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	if settings != nil {
		return settings.FTP, nil
	}

	if create {
		if err := c.repo.Settings.Upsert(ctx, repository.NewSettings(athleteID, c.defaultFTP)); err != nil {
			return 0, fmt.Errorf("creating settings: %w", err)
		}
	}
	return c.defaultFTP, nil
}

func (c *Calculator) invalidate(ctx context.Context, athleteID int64) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateReports(ctx, athleteID); err != nil {
		c.logger.WarnContext(ctx, "invalidating report cache", xslog.AthleteID(athleteID), xslog.Error(err))
	}
}
