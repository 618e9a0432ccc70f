package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type settingsRepo struct {
	db DBTX
}

func (r *settingsRepo) Get(ctx context.Context, athleteID int64) (*Settings, error) {
	var s Settings
	err := r.db.QueryRowContext(ctx, `
		SELECT athlete_id, current_ftp, max_heartrate, resting_heartrate, weight,
			auto_update_ftp, ftp_test_detection, updated_at
		FROM athlete_settings WHERE athlete_id = ?`, athleteID,
	).Scan(&s.AthleteID, &s.FTP, &s.MaxHeartrate, &s.RestingHeartrate, &s.Weight,
		&s.AutoUpdateFTP, &s.FTPTestDetection, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *Settings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO athlete_settings (
			athlete_id, current_ftp, max_heartrate, resting_heartrate, weight,
			auto_update_ftp, ftp_test_detection, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id) DO UPDATE SET
			current_ftp = excluded.current_ftp,
			max_heartrate = excluded.max_heartrate,
			resting_heartrate = excluded.resting_heartrate,
			weight = excluded.weight,
			auto_update_ftp = excluded.auto_update_ftp,
			ftp_test_detection = excluded.ftp_test_detection,
			updated_at = excluded.updated_at`,
		s.AthleteID, s.FTP, s.MaxHeartrate, s.RestingHeartrate, s.Weight,
		s.AutoUpdateFTP, s.FTPTestDetection, utc(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
