package xsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	"golang.org/x/sync/errgroup"
)

const (
	PageSize = strava.MaxPerPage

	maxStoreConcurrency = 4
)

func (s *Service) Sync(ctx context.Context, athleteID int64, opts Options) (*Result, error) {
	logger := s.logger.With(xslog.AthleteGroup(athleteID, 0))

	after := opts.After
	if after == nil {
		latest, err := s.repo.Activities.LatestStartDate(ctx, athleteID)
		if err != nil {
			return nil, fmt.Errorf("failed to read last sync point: %w", err)
		}
		after = latest
	}

	if after != nil {
		logger.InfoContext(ctx, "syncing activities", xslog.Since(*after))
	} else {
		logger.InfoContext(ctx, "syncing all activities")
	}

	result := &Result{After: after}
	params := &strava.ListParams{After: after, PerPage: PageSize}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStoreConcurrency)
	for activity, err := range s.clients(athleteID).Activities.All(ctx, params) {
		if err != nil {
			_ = g.Wait()
			return nil, fmt.Errorf("failed to list activities: %w", err)
		}
		result.Fetched++

		g.Go(func() error {
			storeErr := s.store(gctx, athleteID, &activity)

			mu.Lock()
			defer mu.Unlock()
			if storeErr != nil {
				result.Failed++
				logger.WarnContext(gctx, "failed to store activity",
					xslog.ActivityGroup(activity.ID, activity.SportType, activity.StartDateLocal),
					xslog.Error(storeErr))
				return nil
			}
			result.Stored++
			return nil
		})
	}
	_ = g.Wait()

	logger.InfoContext(ctx, "synced activities",
		xslog.Count(result.Stored),
		slog.Int("fetched", result.Fetched),
		slog.Int("failed", result.Failed))

	if opts.Compute && result.Stored > 0 {
		batch, err := s.calc.CalculateAll(ctx, athleteID, opts.FTP)
		if err != nil {
			return nil, fmt.Errorf("failed to compute metrics: %w", err)
		}
		result.Calculation = batch
	}

	return result, nil
}

func (s *Service) store(ctx context.Context, athleteID int64, a *strava.Activity) error {
	activity, native := Convert(athleteID, a)

	id, err := s.repo.Activities.Upsert(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}
	native.ActivityID = id
	if err := s.repo.Activities.UpsertNative(ctx, native); err != nil {
		return fmt.Errorf("failed to upsert native metrics: %w", err)
	}
	return nil
}
