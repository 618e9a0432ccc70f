package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type customMetricsRepo struct {
	db DBTX
}

const customColumns = `c.id, c.activity_id, c.athlete_id, c.user_ftp, c.user_weight, c.custom_tss,
	c.intensity_factor, c.training_load, c.best_1min_power, c.best_5min_power, c.best_20min_power,
	c.best_1km_time, c.best_5km_time, c.best_10km_time, c.best_half_marathon_time,
	c.best_marathon_time, c.calculated_at, c.calculation_method`

func customDest(m *CustomMetrics) []any {
	return []any{
		&m.ID, &m.ActivityID, &m.AthleteID, &m.UserFTP, &m.UserWeight, &m.CustomTSS,
		&m.IntensityFactor, &m.TrainingLoad, &m.Best1MinPower, &m.Best5MinPower, &m.Best20MinPower,
		&m.Best1KMTime, &m.Best5KMTime, &m.Best10KMTime, &m.BestHalfMarathonTime,
		&m.BestMarathonTime, &m.CalculatedAt, &m.CalculationMethod,
	}
}

// nullableCustom scans custom metrics from the nullable side of a LEFT JOIN.
type nullableCustom struct {
	id           *int64
	activityID   *int64
	athleteID    *int64
	userFTP      *int
	calculatedAt *time.Time
	method       *string
	m            CustomMetrics
}

func (n *nullableCustom) dest() []any {
	return []any{
		&n.id, &n.activityID, &n.athleteID, &n.userFTP, &n.m.UserWeight, &n.m.CustomTSS,
		&n.m.IntensityFactor, &n.m.TrainingLoad, &n.m.Best1MinPower, &n.m.Best5MinPower, &n.m.Best20MinPower,
		&n.m.Best1KMTime, &n.m.Best5KMTime, &n.m.Best10KMTime, &n.m.BestHalfMarathonTime,
		&n.m.BestMarathonTime, &n.calculatedAt, &n.method,
	}
}

func (n *nullableCustom) value() *CustomMetrics {
	if n.id == nil {
		return nil
	}
	m := n.m
	m.ID = *n.id
	m.ActivityID = deref(n.activityID)
	m.AthleteID = deref(n.athleteID)
	m.UserFTP = deref(n.userFTP)
	m.CalculatedAt = deref(n.calculatedAt)
	m.CalculationMethod = deref(n.method)
	return &m
}

func (r *customMetricsRepo) Get(ctx context.Context, activityID int64, athleteID int64) (*CustomMetrics, error) {
	var m CustomMetrics
	err := r.db.QueryRowContext(ctx, `
		SELECT `+customColumns+` FROM custom_metrics c
		WHERE c.activity_id = ? AND c.athlete_id = ?`, activityID, athleteID,
	).Scan(customDest(&m)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get custom metrics: %w", err)
	}
	return &m, nil
}

// Insert stores a new record. A second record for the same activity and
// athlete yields ErrConflict.
func (r *customMetricsRepo) Insert(ctx context.Context, m *CustomMetrics) (int64, error) {
	method := m.CalculationMethod
	if method == "" {
		method = CalculationMethodStravaBased
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO custom_metrics (
			activity_id, athlete_id, user_ftp, user_weight, custom_tss, intensity_factor,
			training_load, best_1min_power, best_5min_power, best_20min_power, best_1km_time,
			best_5km_time, best_10km_time, best_half_marathon_time, best_marathon_time,
			calculated_at, calculation_method
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		m.ActivityID, m.AthleteID, m.UserFTP, m.UserWeight, m.CustomTSS, m.IntensityFactor,
		m.TrainingLoad, m.Best1MinPower, m.Best5MinPower, m.Best20MinPower, m.Best1KMTime,
		m.Best5KMTime, m.Best10KMTime, m.BestHalfMarathonTime, m.BestMarathonTime,
		utc(m.CalculatedAt), method,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("insert custom metrics: %w", err)
	}
	return id, nil
}

// DeleteSince removes records whose activity started on or after since.
func (r *customMetricsRepo) DeleteSince(ctx context.Context, athleteID int64, since time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM custom_metrics
		WHERE athlete_id = ?
		AND activity_id IN (
			SELECT id FROM activities WHERE athlete_id = ? AND start_date_local >= ?
		)`, athleteID, athleteID, utc(since),
	)
	if err != nil {
		return 0, fmt.Errorf("delete custom metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete custom metrics: %w", err)
	}
	return n, nil
}

func (r *customMetricsRepo) ListWithActivities(ctx context.Context, athleteID int64, since *time.Time) ([]MetricsRow, error) {
	query := `
		SELECT ` + activityColumns + `, ` + customColumns + `, ` + nativeColumns + `
		FROM custom_metrics c
		JOIN activities a ON a.id = c.activity_id
		LEFT JOIN native_metrics n ON n.activity_id = a.id
		WHERE c.athlete_id = ?`
	args := []any{athleteID}
	if since != nil {
		query += ` AND a.start_date_local >= ?`
		args = append(args, utc(*since))
	}
	query += ` ORDER BY a.start_date_local DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list custom metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MetricsRow
	for rows.Next() {
		var (
			row    MetricsRow
			native nullableNative
		)
		dest := append(activityDest(&row.Activity), customDest(&row.Custom)...)
		dest = append(dest, native.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan custom metrics: %w", err)
		}
		row.Native = native.value()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list custom metrics: %w", err)
	}
	return out, nil
}
