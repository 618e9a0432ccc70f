package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/garrettladley/fitmetrics/internal/config"
	"github.com/garrettladley/fitmetrics/internal/db"
	"github.com/garrettladley/fitmetrics/internal/paths"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	go_json "github.com/goccy/go-json"
)

const localAthlete = "local"

// app holds the services every command runs against.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	cache    *storage.MemoryBackend
	repo     *repository.Repository
	calc     *calculator.Calculator
	athletes *athlete.Settings
	reports  *analytics.Analytics
	flags    *globalFlags
}

func openApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	logger := xslog.NewLoggerFromEnv(os.Stderr, xslog.FormatText)

	dbPath, err := resolveDBPath(flags.dbPath, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(ctx, dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := repository.New(sqlDB)
	cache := storage.NewMemoryBackend(1, 1)
	calc := calculator.New(repo, cache, calculator.Config{
		DefaultFTP:  cfg.Metrics.DefaultFTP,
		Concurrency: cfg.Metrics.CalcConcurrency,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       sqlDB,
		cache:    cache,
		repo:     repo,
		calc:     calc,
		athletes: athlete.New(repo, calc, cache, cfg.Metrics.DefaultFTP, logger),
		reports:  analytics.New(repo, cache, cfg.Metrics.ReportCacheTTL, logger),
		flags:    flags,
	}, nil
}

func (a *app) Close() {
	_ = a.cache.Close()
	_ = a.db.Close()
}

// resolveDBPath prefers the flag, then FITMETRICS_DB, then the per-user default.
func resolveDBPath(flagPath string, envPath string) (string, error) {
	switch {
	case flagPath != "":
		return flagPath, nil
	case envPath != "":
		return envPath, nil
	}
	if _, err := paths.EnsureDir(); err != nil {
		return "", err
	}
	return paths.DB()
}

// athleteID returns the --athlete value, or the first stored athlete. A fresh
// database gets a local athlete so FIT imports work without Strava.
func (a *app) athleteID(ctx context.Context) (int64, error) {
	if a.flags.athleteID != 0 {
		if _, err := a.repo.Athletes.Get(ctx, a.flags.athleteID); err != nil {
			return 0, err
		}
		return a.flags.athleteID, nil
	}

	first, err := a.repo.Athletes.First(ctx)
	if err == nil {
		return first.ID, nil
	}
	if !errors.Is(err, repository.ErrAthleteNotFound) {
		return 0, err
	}

	id, err := a.repo.Athletes.Create(ctx, &repository.Athlete{Username: localAthlete})
	if err != nil {
		return 0, fmt.Errorf("failed to create local athlete: %w", err)
	}
	a.logger.InfoContext(ctx, "created local athlete", xslog.AthleteID(id))
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := go_json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
