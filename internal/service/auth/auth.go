package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	intoauth "github.com/garrettladley/fitmetrics/internal/oauth"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"golang.org/x/oauth2"
)

const (
	stateTTL        = 5 * time.Minute
	exchangeTimeout = 10 * time.Second
)

type OAuth struct {
	config     *oauth2.Config
	stateStore storage.StateStore
	athletes   repository.AthleteRepository
	now        func() time.Time
}

var _ Service = (*OAuth)(nil)

func NewOAuth(oauthConfig *oauth2.Config, stateStore storage.StateStore, athletes repository.AthleteRepository) *OAuth {
	return &OAuth{
		config:     oauthConfig,
		stateStore: stateStore,
		athletes:   athletes,
		now:        time.Now,
	}
}

func (s *OAuth) StartAuth(ctx context.Context, req StartAuthRequest) (*StartAuthResult, error) {
	if req.ReturnTo != "" && !isLocalPath(req.ReturnTo) {
		return nil, ErrInvalidReturnTo
	}

	state, err := intoauth.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	entry := storage.StateEntry{
		ReturnTo:  req.ReturnTo,
		CreatedAt: s.now(),
	}
	if err := s.stateStore.Set(ctx, state, entry, stateTTL); err != nil {
		return nil, fmt.Errorf("storing state: %w", err)
	}

	authURL := s.config.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
	return &StartAuthResult{AuthURL: authURL}, nil
}

func (s *OAuth) HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.State == "" {
		return nil, ErrInvalidState
	}

	entry, err := s.stateStore.GetAndDelete(ctx, req.State)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidState
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving state: %w", err)
	}

	if req.ErrorCode != "" {
		return nil, &AuthError{
			Err:       ErrAuthDenied,
			ErrorCode: req.ErrorCode,
			ErrorDesc: req.ErrorDesc,
		}
	}
	if req.Code == "" {
		return nil, &AuthError{
			Err:       ErrInvalidState,
			ErrorCode: string(intoauth.ErrorCodeInvalidRequest),
			ErrorDesc: "missing authorization code",
		}
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := s.config.Exchange(exchangeCtx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	athleteID, err := intoauth.SaveAuthorization(ctx, s.athletes, token)
	if err != nil {
		return nil, fmt.Errorf("saving authorization: %w", err)
	}

	return &CallbackResult{AthleteID: athleteID, ReturnTo: entry.ReturnTo}, nil
}

func isLocalPath(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.Contains(s, `\`)
}
