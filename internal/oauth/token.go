package oauth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/garrettladley/fitmetrics/internal/repository"
	"golang.org/x/oauth2"
)

type TokenChecker interface {
	HasToken(ctx context.Context) (bool, error)
}

var (
	_ TokenChecker       = (*DBTokenSource)(nil)
	_ oauth2.TokenSource = (*DBTokenSource)(nil)
)

// DBTokenSource serves the stored Strava token of one athlete and persists
// refreshed tokens. Strava rotates refresh tokens, so every refresh is saved.
type DBTokenSource struct {
	config    *oauth2.Config
	athletes  repository.AthleteRepository
	athleteID int64
	mu        sync.Mutex
	token     *oauth2.Token
}

func NewDBTokenSource(config *oauth2.Config, athletes repository.AthleteRepository, athleteID int64) *DBTokenSource {
	return &DBTokenSource{
		config:    config,
		athletes:  athletes,
		athleteID: athleteID,
	}
}

func (s *DBTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && s.token.Valid() {
		return s.token, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, err := s.athletes.GetToken(ctx, s.athleteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if stored == nil {
		return nil, ErrNoToken
	}

	token := toOAuth2(stored)

	if token.Valid() {
		s.token = token
		return token, nil
	}

	if token.RefreshToken == "" {
		return nil, ErrTokenExpired
	}

	newToken, err := s.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if err := s.athletes.UpsertToken(ctx, fromOAuth2(s.athleteID, newToken)); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	s.token = newToken

	return newToken, nil
}

func (s *DBTokenSource) HasToken(ctx context.Context) (bool, error) {
	stored, err := s.athletes.GetToken(ctx, s.athleteID)
	if err != nil {
		return false, err
	}
	return stored != nil, nil
}

func toOAuth2(t *repository.Token) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
	}

	if t.RefreshToken != nil {
		token.RefreshToken = *t.RefreshToken
	}

	return token
}

func fromOAuth2(athleteID int64, token *oauth2.Token) *repository.Token {
	t := &repository.Token{
		AthleteID:   athleteID,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expiry:      token.Expiry,
	}
	if t.TokenType == "" {
		t.TokenType = "Bearer"
	}

	if token.RefreshToken != "" {
		t.RefreshToken = &token.RefreshToken
	}

	return t
}
