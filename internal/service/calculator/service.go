package calculator

import (
	"context"
	"time"

	"github.com/garrettladley/fitmetrics/internal/repository"
)

type Service interface {
	// Calculate returns the metrics record of one activity, computing and
	// storing it on first use. An existing record is returned unchanged.
	// Returns repository.ErrActivityNotFound for unknown activities.
	Calculate(ctx context.Context, activityID int64, athleteID int64, ftpOverride *int) (*repository.CustomMetrics, error)

	// CalculateAll computes missing records for every activity of the athlete.
	CalculateAll(ctx context.Context, athleteID int64, ftpOverride *int) (*BatchResult, error)

	// CalculateSince is CalculateAll restricted to activities started on or after since.
	CalculateSince(ctx context.Context, athleteID int64, since time.Time, ftpOverride *int) (*BatchResult, error)
}

type BatchResult struct {
	Calculated int           `json:"calculated"`
	Skipped    int           `json:"skipped"`
	Errors     int           `json:"errors"`
	Total      int           `json:"total_activities"`
	UserFTP    int           `json:"user_ftp"`
	Failures   []ItemFailure `json:"failures,omitempty"`
}

type ItemFailure struct {
	ActivityID int64  `json:"activity_id"`
	Reason     string `json:"reason"`
}
