package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/db"
	"github.com/garrettladley/fitmetrics/internal/migrations/postgres"
	"github.com/garrettladley/fitmetrics/internal/oauth"
	xredis "github.com/garrettladley/fitmetrics/internal/redis"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/server"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/service/auth"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/version"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	"github.com/garrettladley/fitmetrics/internal/xsync"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

const (
	keyPort        = "port"
	keyEnv         = "env"
	keyGracePeriod = "grace_period"

	shutdownGracePeriod = 2 * time.Second
)

func main() {
	_ = godotenv.Load()

	logger := xslog.NewLoggerFromEnv(os.Stdout, xslog.FormatJSON)
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", xslog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := server.ReadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	repo, closeDB, err := initRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeDB()

	backend, err := initBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close backend", xslog.Error(err))
		}
	}()

	// Services
	calc := calculator.New(repo, backend, calculator.Config{
		DefaultFTP:  cfg.Metrics.DefaultFTP,
		Concurrency: cfg.Metrics.CalcConcurrency,
	}, logger)
	services := server.Services{
		Repo:       repo,
		Backend:    backend,
		Calculator: calc,
		Athletes:   athlete.New(repo, calc, backend, cfg.Metrics.DefaultFTP, logger),
		Analytics:  analytics.New(repo, backend, cfg.Metrics.ReportCacheTTL, logger),
	}

	if stravaCfg := cfg.StravaConfig(); stravaCfg.Configured() {
		oauthConfig := oauth.NewConfig(stravaCfg)
		limiter := strava.NewRateLimiter()
		clients := func(athleteID int64) *strava.Client {
			return strava.New(
				oauth.NewDBTokenSource(oauthConfig, repo.Athletes, athleteID),
				strava.WithLogger(logger),
				strava.WithRateLimiter(limiter),
			)
		}
		services.Auth = auth.NewOAuth(oauthConfig, backend, repo.Athletes)
		services.Sync = xsync.NewService(clients, repo, calc, logger)
	} else {
		logger.WarnContext(ctx, "Strava credentials not set, auth and sync routes disabled")
	}

	if cfg.Env.IsProduction() && version.IsDevelopment(version.Get()) {
		logger.WarnContext(ctx, "running a development build in production", xslog.Version())
	}

	shutdownCoordinator := server.NewShutdownCoordinator(shutdownGracePeriod)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(services, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute, // a sync with compute can take minutes
		IdleTimeout:       60 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return shutdownCoordinator.BaseContext()
		},
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.InfoContext(ctx, "starting server",
			xslog.Version(),
			slog.String(keyPort, cfg.Port),
			slog.String(keyEnv, string(cfg.Env)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "server error", xslog.Error(err))
		}
	}()

	<-done
	logger.InfoContext(ctx, "shutdown signal received, initiating graceful shutdown")

	shutdownCoordinator.InitiateShutdown()
	logger.InfoContext(ctx, "grace period complete, shutting down server",
		slog.Duration(keyGracePeriod, shutdownCoordinator.GracePeriod()))

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}

func initRepository(ctx context.Context, cfg server.Config, logger *slog.Logger) (*repository.Repository, func(), error) {
	if !cfg.UsesPostgres() {
		logger.InfoContext(ctx, "initializing SQLite", xslog.Path(cfg.DatabaseURL))
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.New(sqlDB), closer(ctx, sqlDB, logger), nil
	}

	logger.InfoContext(ctx, "initializing PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := postgres.Apply(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	closeSQL := closer(ctx, sqlDB, logger)
	return repository.NewPostgres(sqlDB), func() {
		closeSQL()
		pool.Close()
	}, nil
}

func closer(ctx context.Context, sqlDB *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := sqlDB.Close(); err != nil {
			logger.ErrorContext(ctx, "failed to close database", xslog.Error(err))
		}
	}
}

func initBackend(ctx context.Context, cfg server.Config, logger *slog.Logger) (storage.Backend, error) {
	if !cfg.Redis.Enabled() {
		logger.InfoContext(ctx, "initializing in-memory backend")
		return storage.NewMemoryBackend(cfg.RateLimit.Limit, cfg.RateLimit.Burst), nil
	}

	redisClient, err := xredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}

	logger.InfoContext(ctx, "initializing Redis backend")
	return storage.NewRedisBackend(storage.RedisConfig{Client: redisClient}, int(cfg.RateLimit.Limit))
}
