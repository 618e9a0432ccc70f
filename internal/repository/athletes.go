package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type athleteRepo struct {
	db DBTX
}

const athleteColumns = `id, strava_id, username, firstname, lastname, created_at, updated_at`

func scanAthlete(row interface{ Scan(...any) error }) (*Athlete, error) {
	var a Athlete
	if err := row.Scan(&a.ID, &a.StravaID, &a.Username, &a.FirstName, &a.LastName, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *athleteRepo) Get(ctx context.Context, id int64) (*Athlete, error) {
	a, err := scanAthlete(r.db.QueryRowContext(ctx, `SELECT `+athleteColumns+` FROM athletes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get athlete: %w", err)
	}
	return a, nil
}

func (r *athleteRepo) First(ctx context.Context) (*Athlete, error) {
	a, err := scanAthlete(r.db.QueryRowContext(ctx, `SELECT `+athleteColumns+` FROM athletes ORDER BY id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAthleteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("first athlete: %w", err)
	}
	return a, nil
}

func (r *athleteRepo) Create(ctx context.Context, athlete *Athlete) (int64, error) {
	now := utc(time.Now())
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO athletes (strava_id, username, firstname, lastname, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		athlete.StravaID, athlete.Username, athlete.FirstName, athlete.LastName, now, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("create athlete: %w", err)
	}
	return id, nil
}

func (r *athleteRepo) UpsertByStravaID(ctx context.Context, athlete *Athlete) (int64, error) {
	if athlete.StravaID == nil {
		return 0, errors.New("upsert athlete: missing strava id")
	}
	now := utc(time.Now())
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO athletes (strava_id, username, firstname, lastname, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (strava_id) DO UPDATE SET
			username = excluded.username,
			firstname = excluded.firstname,
			lastname = excluded.lastname,
			updated_at = excluded.updated_at
		RETURNING id`,
		athlete.StravaID, athlete.Username, athlete.FirstName, athlete.LastName, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert athlete: %w", err)
	}
	return id, nil
}

func (r *athleteRepo) GetToken(ctx context.Context, athleteID int64) (*Token, error) {
	var t Token
	err := r.db.QueryRowContext(ctx, `
		SELECT athlete_id, access_token, refresh_token, token_type, expiry
		FROM tokens WHERE athlete_id = ?`, athleteID,
	).Scan(&t.AthleteID, &t.AccessToken, &t.RefreshToken, &t.TokenType, &t.Expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &t, nil
}

func (r *athleteRepo) UpsertToken(ctx context.Context, token *Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tokens (athlete_id, access_token, refresh_token, token_type, expiry)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry`,
		token.AthleteID, token.AccessToken, token.RefreshToken, token.TokenType, utc(token.Expiry),
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}
