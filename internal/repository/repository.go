package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrConflict         = errors.New("record already exists")
	ErrActivityNotFound = errors.New("activity not found")
	ErrAthleteNotFound  = errors.New("athlete not found")
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	Athletes      AthleteRepository
	Activities    ActivityRepository
	Settings      SettingsRepository
	CustomMetrics CustomMetricsRepository
}

func New(db DBTX) *Repository {
	return &Repository{
		Athletes:      &athleteRepo{db: db},
		Activities:    &activityRepo{db: db},
		Settings:      &settingsRepo{db: db},
		CustomMetrics: &customMetricsRepo{db: db},
	}
}

const DefaultPageSize = 50

type PageParams struct {
	Year   *int
	Type   string
	Limit  int
	Offset int
}

type PageResult[T any] struct {
	Records []T `json:"records"`
	Total   int `json:"total"`
}

type MetricsCounts struct {
	Total      int `json:"total_activities"`
	WithNative int `json:"with_native_metrics"`
	WithCustom int `json:"with_custom_metrics"`
}

type AthleteRepository interface {
	Get(ctx context.Context, id int64) (*Athlete, error)
	First(ctx context.Context) (*Athlete, error)
	Create(ctx context.Context, athlete *Athlete) (int64, error)
	UpsertByStravaID(ctx context.Context, athlete *Athlete) (int64, error)
	GetToken(ctx context.Context, athleteID int64) (*Token, error)
	UpsertToken(ctx context.Context, token *Token) error
}

type ActivityRepository interface {
	// Get returns ErrActivityNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*Activity, error)
	GetNative(ctx context.Context, activityID int64) (*NativeMetrics, error)
	ListByAthlete(ctx context.Context, athleteID int64, since *time.Time) ([]Activity, error)
	ListWithMetrics(ctx context.Context, athleteID int64, params PageParams) (*PageResult[ActivityWithMetrics], error)
	Upsert(ctx context.Context, activity *Activity) (int64, error)
	UpsertNative(ctx context.Context, native *NativeMetrics) error
	// LatestStartDate is nil when the athlete has no activities yet.
	LatestStartDate(ctx context.Context, athleteID int64) (*time.Time, error)
	Counts(ctx context.Context, athleteID int64) (*MetricsCounts, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, athleteID int64) (*Settings, error)
	Upsert(ctx context.Context, settings *Settings) error
}

type CustomMetricsRepository interface {
	Get(ctx context.Context, activityID int64, athleteID int64) (*CustomMetrics, error)
	Insert(ctx context.Context, metrics *CustomMetrics) (int64, error)
	DeleteSince(ctx context.Context, athleteID int64, since time.Time) (int64, error)
	ListWithActivities(ctx context.Context, athleteID int64, since *time.Time) ([]MetricsRow, error)
}

// utc normalizes stored timestamps so text comparisons in sqlite stay ordered.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
