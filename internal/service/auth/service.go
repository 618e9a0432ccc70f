package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidState    = errors.New("invalid or expired state")
	ErrAuthDenied      = errors.New("authorization denied")
	ErrInvalidReturnTo = errors.New("return_to must be a local path")
)

type StartAuthRequest struct {
	// ReturnTo is a local path the callback redirects to once the athlete is
	// stored. Empty means the callback answers with JSON.
	ReturnTo string
}

type StartAuthResult struct {
	AuthURL string
}

type CallbackRequest struct {
	State     string
	Code      string
	ErrorCode string
	ErrorDesc string
}

type CallbackResult struct {
	AthleteID int64
	ReturnTo  string
}

// AuthError carries the OAuth error code reported back to the caller.
type AuthError struct {
	Err       error
	ErrorCode string
	ErrorDesc string
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type Service interface {
	// StartAuth stores a fresh state and returns the Strava authorization URL.
	// Returns ErrInvalidReturnTo if ReturnTo is not a local path.
	StartAuth(ctx context.Context, req StartAuthRequest) (*StartAuthResult, error)

	// HandleCallback exchanges the code and stores the athlete and token.
	// Returns ErrInvalidState if state is missing or unknown.
	// Returns *AuthError wrapping ErrAuthDenied if Strava denied access.
	HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
}
