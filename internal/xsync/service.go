package xsync

import (
	"context"
	"log/slog"
	"time"

	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
)

type SyncService interface {
	// Sync pulls the activities that started after the newest stored one and
	// stores them together with their native metrics.
	Sync(ctx context.Context, athleteID int64, opts Options) (*Result, error)
}

// ClientFunc returns a Strava client authorized as the given athlete.
type ClientFunc func(athleteID int64) *strava.Client

type Options struct {
	// After overrides the start of the sync window. Defaults to the start
	// date of the newest stored activity.
	After *time.Time

	// Compute runs the batch calculator once new activities are stored.
	Compute bool

	// FTP overrides the athlete's FTP for the batch calculation.
	FTP *int
}

type Result struct {
	After       *time.Time              `json:"after"`
	Fetched     int                     `json:"fetched"`
	Stored      int                     `json:"stored"`
	Failed      int                     `json:"failed"`
	Calculation *calculator.BatchResult `json:"calculation,omitempty"`
}

type Service struct {
	clients ClientFunc
	repo    *repository.Repository
	calc    calculator.Service
	logger  *slog.Logger
}

var _ SyncService = (*Service)(nil)

func NewService(clients ClientFunc, repo *repository.Repository, calc calculator.Service, logger *slog.Logger) *Service {
	return &Service{
		clients: clients,
		repo:    repo,
		calc:    calc,
		logger:  logger,
	}
}
