package server

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/server/handler"
	servermw "github.com/garrettladley/fitmetrics/internal/server/middleware"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/service/auth"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xhttp/middleware"
	"github.com/garrettladley/fitmetrics/internal/xsync"
)

// Services are the dependencies behind the HTTP API. Auth and Sync may be
// nil when no Strava credentials are configured.
type Services struct {
	Repo       *repository.Repository
	Backend    storage.Backend
	Calculator calculator.Service
	Athletes   athlete.Service
	Analytics  analytics.Service
	Auth       auth.Service
	Sync       xsync.SyncService
}

// NewRouter registers every route and wraps them in the middleware chain.
func NewRouter(svc Services, logger *slog.Logger) http.Handler {
	athleteHandler := handler.NewAthlete(svc.Repo.Athletes, svc.Athletes)
	metricsHandler := handler.NewMetrics(svc.Repo, svc.Calculator, svc.Analytics)
	analyticsHandler := handler.NewAnalytics(svc.Repo.Athletes, svc.Analytics)
	exportHandler := handler.NewExport(svc.Repo)
	healthHandler := handler.NewHealth(map[string]handler.Pinger{"storage": svc.Backend})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.HandleHealth)

	const prefix = "/api/athletes/{athleteID}"
	mux.HandleFunc("GET "+prefix+"/settings", athleteHandler.HandleGetSettings)
	mux.HandleFunc("PUT "+prefix+"/settings", athleteHandler.HandlePutSettings)
	mux.HandleFunc("POST "+prefix+"/update-ftp", athleteHandler.HandleUpdateFTP)
	mux.HandleFunc("GET "+prefix+"/zones", athleteHandler.HandleZones)

	mux.HandleFunc("POST "+prefix+"/custom-metrics", metricsHandler.HandleCalculateAll)
	mux.HandleFunc("POST "+prefix+"/activities/{activityID}/custom-metrics", metricsHandler.HandleCalculateActivity)
	mux.HandleFunc("GET "+prefix+"/activities", metricsHandler.HandleListActivities)
	mux.HandleFunc("GET "+prefix+"/metrics-status", metricsHandler.HandleMetricsStatus)

	mux.HandleFunc("GET "+prefix+"/personal-records", analyticsHandler.HandlePersonalRecords)
	mux.HandleFunc("GET "+prefix+"/training-load", analyticsHandler.HandleTrainingLoad)
	mux.HandleFunc("GET "+prefix+"/compare-tss", analyticsHandler.HandleCompareTSS)
	mux.HandleFunc("GET "+prefix+"/ftp-tests", analyticsHandler.HandleFTPTests)
	mux.HandleFunc("GET "+prefix+"/power-curve", analyticsHandler.HandlePowerCurve)
	mux.HandleFunc("GET "+prefix+"/training-patterns", analyticsHandler.HandleTrainingPatterns)
	mux.HandleFunc("GET "+prefix+"/recommendations", analyticsHandler.HandleRecommendations)
	mux.HandleFunc("GET "+prefix+"/dashboard", analyticsHandler.HandleDashboard)

	mux.HandleFunc("GET "+prefix+"/export.csv", exportHandler.HandleCSV)
	mux.HandleFunc("GET "+prefix+"/export.parquet", exportHandler.HandleParquet)

	if svc.Sync != nil {
		syncHandler := handler.NewSync(svc.Repo.Athletes, svc.Sync)
		mux.HandleFunc("POST "+prefix+"/sync", syncHandler.HandleSync)
	}
	if svc.Auth != nil {
		authHandler := handler.NewAuth(svc.Auth)
		mux.HandleFunc("GET /auth/strava", authHandler.HandleAuthStart)
		mux.HandleFunc("GET /auth/strava/callback", authHandler.HandleAuthCallback)
	}

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Logging,
		middleware.SecurityHeaders,
		middleware.Gzip,
		servermw.RateLimitWithBackend(svc.Backend),
	)
}
