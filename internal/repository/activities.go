package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type activityRepo struct {
	db DBTX
}

const activityColumns = `a.id, a.athlete_id, a.external_id, a.name, a.type, a.sport_type,
	a.start_date, a.start_date_local, a.distance_km, a.moving_time_seconds, a.elapsed_time_seconds,
	a.average_speed, a.max_speed, a.total_elevation_gain, a.average_heartrate, a.max_heartrate,
	a.calories, a.created_at`

func activityDest(a *Activity) []any {
	return []any{
		&a.ID, &a.AthleteID, &a.ExternalID, &a.Name, &a.Type, &a.SportType,
		&a.StartDate, &a.StartDateLocal, &a.DistanceKM, &a.MovingTimeSeconds, &a.ElapsedTimeSeconds,
		&a.AverageSpeed, &a.MaxSpeed, &a.TotalElevationGain, &a.AverageHeartrate, &a.MaxHeartrate,
		&a.Calories, &a.CreatedAt,
	}
}

const nativeColumns = `n.activity_id, n.average_watts, n.weighted_average_watts, n.max_watts,
	n.device_watts, n.average_heartrate, n.max_heartrate, n.has_heartrate, n.suffer_score,
	n.perceived_exertion, n.average_cadence, n.average_temp, n.trainer, n.commute`

// nullableNative scans native metrics from the nullable side of a LEFT JOIN.
type nullableNative struct {
	activityID *int64
	m          NativeMetrics
	device     *bool
	hasHR      *bool
	trainer    *bool
	commute    *bool
}

func (n *nullableNative) dest() []any {
	return []any{
		&n.activityID, &n.m.AverageWatts, &n.m.WeightedAverageWatts, &n.m.MaxWatts,
		&n.device, &n.m.AverageHeartrate, &n.m.MaxHeartrate, &n.hasHR, &n.m.SufferScore,
		&n.m.PerceivedExertion, &n.m.AverageCadence, &n.m.AverageTemp, &n.trainer, &n.commute,
	}
}

func (n *nullableNative) value() *NativeMetrics {
	if n.activityID == nil {
		return nil
	}
	m := n.m
	m.ActivityID = *n.activityID
	m.DeviceWatts = deref(n.device)
	m.HasHeartrate = deref(n.hasHR)
	m.Trainer = deref(n.trainer)
	m.Commute = deref(n.commute)
	return &m
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (r *activityRepo) Get(ctx context.Context, id int64) (*Activity, error) {
	var a Activity
	err := r.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities a WHERE a.id = ?`, id).Scan(activityDest(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &a, nil
}

func (r *activityRepo) GetNative(ctx context.Context, activityID int64) (*NativeMetrics, error) {
	var n nullableNative
	err := r.db.QueryRowContext(ctx, `SELECT `+nativeColumns+` FROM native_metrics n WHERE n.activity_id = ?`, activityID).Scan(n.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get native metrics: %w", err)
	}
	return n.value(), nil
}

func (r *activityRepo) ListByAthlete(ctx context.Context, athleteID int64, since *time.Time) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE a.athlete_id = ?`
	args := []any{athleteID}
	if since != nil {
		query += ` AND a.start_date_local >= ?`
		args = append(args, utc(*since))
	}
	query += ` ORDER BY a.start_date_local DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(activityDest(&a)...); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return out, nil
}

func (r *activityRepo) ListWithMetrics(ctx context.Context, athleteID int64, params PageParams) (*PageResult[ActivityWithMetrics], error) {
	where := []string{"a.athlete_id = ?"}
	args := []any{athleteID}
	if params.Year != nil {
		start := time.Date(*params.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		where = append(where, "a.start_date_local >= ?", "a.start_date_local < ?")
		args = append(args, start, start.AddDate(1, 0, 0))
	}
	if params.Type != "" {
		where = append(where, "a.type = ?")
		args = append(args, params.Type)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities a WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+activityColumns+`, `+nativeColumns+`, `+customColumns+`
		FROM activities a
		LEFT JOIN native_metrics n ON n.activity_id = a.id
		LEFT JOIN custom_metrics c ON c.activity_id = a.id AND c.athlete_id = a.athlete_id
		WHERE `+clause+`
		ORDER BY a.start_date_local DESC
		LIMIT ? OFFSET ?`,
		append(args, limit, params.Offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list activities with metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]ActivityWithMetrics, 0, limit)
	for rows.Next() {
		var (
			rec    ActivityWithMetrics
			native nullableNative
			custom nullableCustom
		)
		dest := append(activityDest(&rec.Activity), native.dest()...)
		dest = append(dest, custom.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan activity with metrics: %w", err)
		}
		rec.Native = native.value()
		rec.Custom = custom.value()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities with metrics: %w", err)
	}

	return &PageResult[ActivityWithMetrics]{Records: records, Total: total}, nil
}

func (r *activityRepo) Upsert(ctx context.Context, a *Activity) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO activities (
			athlete_id, external_id, name, type, sport_type, start_date, start_date_local,
			distance_km, moving_time_seconds, elapsed_time_seconds, average_speed, max_speed,
			total_elevation_gain, average_heartrate, max_heartrate, calories, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			sport_type = excluded.sport_type,
			distance_km = excluded.distance_km,
			moving_time_seconds = excluded.moving_time_seconds,
			elapsed_time_seconds = excluded.elapsed_time_seconds,
			average_speed = excluded.average_speed,
			max_speed = excluded.max_speed,
			total_elevation_gain = excluded.total_elevation_gain,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			calories = excluded.calories
		RETURNING id`,
		a.AthleteID, a.ExternalID, a.Name, a.Type, a.SportType, utc(a.StartDate), utc(a.StartDateLocal),
		a.DistanceKM, a.MovingTimeSeconds, a.ElapsedTimeSeconds, a.AverageSpeed, a.MaxSpeed,
		a.TotalElevationGain, a.AverageHeartrate, a.MaxHeartrate, a.Calories, utc(time.Now()),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert activity: %w", err)
	}
	return id, nil
}

func (r *activityRepo) UpsertNative(ctx context.Context, n *NativeMetrics) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO native_metrics (
			activity_id, average_watts, weighted_average_watts, max_watts, device_watts,
			average_heartrate, max_heartrate, has_heartrate, suffer_score, perceived_exertion,
			average_cadence, average_temp, trainer, commute
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (activity_id) DO UPDATE SET
			average_watts = excluded.average_watts,
			weighted_average_watts = excluded.weighted_average_watts,
			max_watts = excluded.max_watts,
			device_watts = excluded.device_watts,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			has_heartrate = excluded.has_heartrate,
			suffer_score = excluded.suffer_score,
			perceived_exertion = excluded.perceived_exertion,
			average_cadence = excluded.average_cadence,
			average_temp = excluded.average_temp,
			trainer = excluded.trainer,
			commute = excluded.commute`,
		n.ActivityID, n.AverageWatts, n.WeightedAverageWatts, n.MaxWatts, n.DeviceWatts,
		n.AverageHeartrate, n.MaxHeartrate, n.HasHeartrate, n.SufferScore, n.PerceivedExertion,
		n.AverageCadence, n.AverageTemp, n.Trainer, n.Commute,
	)
	if err != nil {
		return fmt.Errorf("upsert native metrics: %w", err)
	}
	return nil
}

func (r *activityRepo) LatestStartDate(ctx context.Context, athleteID int64) (*time.Time, error) {
	var a Activity
	err := r.db.QueryRowContext(ctx, `
		SELECT `+activityColumns+` FROM activities a
		WHERE a.athlete_id = ?
		ORDER BY a.start_date DESC
		LIMIT 1`, athleteID,
	).Scan(activityDest(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest activity: %w", err)
	}
	return &a.StartDate, nil
}

func (r *activityRepo) Counts(ctx context.Context, athleteID int64) (*MetricsCounts, error) {
	var c MetricsCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(n.activity_id), COUNT(c.id)
		FROM activities a
		LEFT JOIN native_metrics n ON n.activity_id = a.id
		LEFT JOIN custom_metrics c ON c.activity_id = a.id AND c.athlete_id = a.athlete_id
		WHERE a.athlete_id = ?`, athleteID,
	).Scan(&c.Total, &c.WithNative, &c.WithCustom)
	if err != nil {
		return nil, fmt.Errorf("count metrics: %w", err)
	}
	return &c, nil
}
