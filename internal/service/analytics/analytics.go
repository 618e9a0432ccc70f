package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garrettladley/fitmetrics/internal/metrics"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	"golang.org/x/sync/errgroup"
)

type Analytics struct {
	repo     *repository.Repository
	cache    storage.ReportCache
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

var _ Service = (*Analytics)(nil)

func New(repo *repository.Repository, cache storage.ReportCache, cacheTTL time.Duration, logger *slog.Logger) *Analytics {
	return &Analytics{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *Analytics) window(ctx context.Context, athleteID int64, days int) ([]repository.MetricsRow, error) {
	since := a.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := a.repo.CustomMetrics.ListWithActivities(ctx, athleteID, &since)
	if err != nil {
		return nil, fmt.Errorf("loading metrics since %s: %w", since.Format(dateLayout), err)
	}
	a.logger.DebugContext(ctx, "loaded metrics window",
		xslog.AthleteID(athleteID),
		xslog.Days(days),
		xslog.Count(len(rows)),
	)
	return rows, nil
}

func (a *Analytics) all(ctx context.Context, athleteID int64) ([]repository.MetricsRow, error) {
	rows, err := a.repo.CustomMetrics.ListWithActivities(ctx, athleteID, nil)
	if err != nil {
		return nil, fmt.Errorf("loading metrics: %w", err)
	}
	return rows, nil
}

func orDefault(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (a *Analytics) TrainingLoad(ctx context.Context, athleteID int64, days int) (*LoadAnalysis, error) {
	days = orDefault(days, DefaultLoadDays)
	rows, err := a.window(ctx, athleteID, days)
	if err != nil {
		return nil, err
	}
	analysis := BuildLoadAnalysis(rows, days)
	if analysis == nil {
		return nil, ErrNoData
	}
	return analysis, nil
}

func (a *Analytics) DetectFTPTests(ctx context.Context, athleteID int64, months int) ([]FTPTest, error) {
	months = orDefault(months, DefaultFTPTestMonths)
	rows, err := a.window(ctx, athleteID, months*daysPerMonthForFTPDetector)
	if err != nil {
		return nil, err
	}
	tests := DetectFTPTests(rows)
	if len(tests) == 0 {
		return nil, ErrNoData
	}
	return tests, nil
}

func (a *Analytics) PowerCurve(ctx context.Context, athleteID int64) (*PowerCurve, error) {
	rows, err := a.all(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	curve := BuildPowerCurve(rows)
	if curve == nil {
		return nil, ErrNoData
	}
	return curve, nil
}

func (a *Analytics) TrainingPatterns(ctx context.Context, athleteID int64, days int) (*TrainingPatterns, error) {
	days = orDefault(days, DefaultPatternDays)
	rows, err := a.window(ctx, athleteID, days)
	if err != nil {
		return nil, err
	}
	patterns := BuildTrainingPatterns(rows, days)
	if patterns == nil {
		return nil, ErrNoData
	}
	return patterns, nil
}

func (a *Analytics) RecordsSummary(ctx context.Context, athleteID int64) (*RecordsSummary, error) {
	rows, err := a.all(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	summary := BuildRecordsSummary(rows)
	if summary == nil {
		return nil, ErrNoData
	}
	return summary, nil
}

func (a *Analytics) CompareWithVendor(ctx context.Context, athleteID int64, limit int) (*VendorComparison, error) {
	limit = orDefault(limit, DefaultComparisonLimit)
	rows, err := a.all(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	comparison := BuildVendorComparison(rows, limit)
	if comparison == nil {
		return nil, ErrNoData
	}
	return comparison, nil
}

func (a *Analytics) Recommendations(ctx context.Context, athleteID int64, days int) (*Recommendations, error) {
	days = orDefault(days, DefaultRecommendationDays)
	analysis, err := a.TrainingLoad(ctx, athleteID, days)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, err
	}
	return Recommend(analysis, days), nil
}

// optional maps ErrNoData to an empty section.
func optional[T any](v T, err error) (T, error) {
	if errors.Is(err, ErrNoData) {
		var zero T
		return zero, nil
	}
	return v, err
}

func (a *Analytics) Dashboard(ctx context.Context, athleteID int64) (*Dashboard, error) {
	logger := a.logger.With(xslog.AthleteID(athleteID))

	var cached Dashboard
	err := a.cache.GetReport(ctx, athleteID, dashboardReport, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.WarnContext(ctx, "reading cached dashboard", xslog.Error(err))
	}

	settings, err := a.repo.Settings.Get(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if settings == nil {
		return nil, ErrSetupRequired
	}

	d := &Dashboard{
		Settings:          settings,
		PotentialFTPTests: []FTPTest{},
		GeneratedAt:       a.now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := a.RecordsSummary(gctx, athleteID)
		d.PersonalRecords, err = optional(records, err)
		return err
	})
	g.Go(func() error {
		load, err := a.TrainingLoad(gctx, athleteID, DefaultLoadDays)
		d.RecentTrainingLoad, err = optional(load, err)
		return err
	})
	g.Go(func() error {
		comparison, err := a.CompareWithVendor(gctx, athleteID, dashboardComparisonLimit)
		d.TSSComparison, err = optional(comparison, err)
		return err
	})
	g.Go(func() error {
		tests, err := a.DetectFTPTests(gctx, athleteID, dashboardFTPTestMonths)
		if tests, err = optional(tests, err); err != nil {
			return err
		}
		if len(tests) > dashboardFTPTests {
			tests = tests[:dashboardFTPTests]
		}
		if tests != nil {
			d.PotentialFTPTests = tests
		}
		return nil
	})
	g.Go(func() error {
		recs, err := a.Recommendations(gctx, athleteID, DefaultRecommendationDays)
		d.Recommendations = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	if err := a.cache.SetReport(ctx, athleteID, dashboardReport, d, a.cacheTTL); err != nil {
		logger.WarnContext(ctx, "caching dashboard", xslog.Error(err))
	}

	return d, nil
}

func (a *Analytics) MetricsStatus(ctx context.Context, athleteID int64) (*MetricsStatus, error) {
	counts, err := a.repo.Activities.Counts(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	status := &MetricsStatus{MetricsCounts: *counts}
	if counts.Total > 0 {
		status.NativeCoverage = metrics.Round(float64(counts.WithNative)/float64(counts.Total)*100, 1)
		status.CustomCoverage = metrics.Round(float64(counts.WithCustom)/float64(counts.Total)*100, 1)
	}
	return status, nil
}
