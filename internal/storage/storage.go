package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("state not found")

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// StateEntry is the server-side half of an OAuth state parameter.
type StateEntry struct {
	ReturnTo  string    `json:"return_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StateStore interface {
	Set(ctx context.Context, state string, entry StateEntry, ttl time.Duration) error

	// GetAndDelete atomically retrieves and removes a state entry.
	// Returns ErrNotFound if the state does not exist or has expired.
	GetAndDelete(ctx context.Context, state string) (StateEntry, error)
}

// ReportCache holds rendered analytics reports per athlete.
type ReportCache interface {
	// GetReport decodes the cached report into dst. Returns ErrNotFound on a miss.
	GetReport(ctx context.Context, athleteID int64, name string, dst any) error
	SetReport(ctx context.Context, athleteID int64, name string, report any, ttl time.Duration) error
	// InvalidateReports drops every cached report of the athlete.
	InvalidateReports(ctx context.Context, athleteID int64) error
}

type Backend interface {
	RateLimiter
	StateStore
	ReportCache

	Close() error

	Ping(ctx context.Context) error
}
