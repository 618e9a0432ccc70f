package strava

import (
	"context"
	"net/http"
)

type AthleteService interface {
	GetAuthenticated(ctx context.Context) (*Athlete, error)
}

type athleteService struct {
	client *Client
}

func (s *athleteService) GetAuthenticated(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := s.client.do(ctx, http.MethodGet, "/athlete", nil, &athlete); err != nil {
		return nil, err
	}
	return &athlete, nil
}
