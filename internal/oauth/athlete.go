package oauth

import (
	"context"
	"fmt"

	"github.com/garrettladley/fitmetrics/internal/repository"
	"golang.org/x/oauth2"
)

// AthleteFromToken reads the athlete summary Strava embeds in the token
// exchange response.
func AthleteFromToken(token *oauth2.Token) (*repository.Athlete, error) {
	raw, ok := token.Extra("athlete").(map[string]any)
	if !ok {
		return nil, ErrNoAthlete
	}

	id, ok := raw["id"].(float64)
	if !ok || id <= 0 {
		return nil, ErrNoAthlete
	}
	stravaID := int64(id)

	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}

	return &repository.Athlete{
		StravaID:  &stravaID,
		Username:  str("username"),
		FirstName: str("firstname"),
		LastName:  str("lastname"),
	}, nil
}

// SaveAuthorization stores the athlete behind a freshly exchanged token
// together with the token itself and returns the local athlete id.
func SaveAuthorization(ctx context.Context, athletes repository.AthleteRepository, token *oauth2.Token) (int64, error) {
	athlete, err := AthleteFromToken(token)
	if err != nil {
		return 0, err
	}

	id, err := athletes.UpsertByStravaID(ctx, athlete)
	if err != nil {
		return 0, fmt.Errorf("saving athlete: %w", err)
	}

	if err := athletes.UpsertToken(ctx, fromOAuth2(id, token)); err != nil {
		return 0, fmt.Errorf("saving token: %w", err)
	}

	return id, nil
}
