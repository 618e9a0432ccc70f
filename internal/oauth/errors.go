package oauth

import "errors"

type ErrorCode string

const (
	ErrorCodeAccessDenied   ErrorCode = "access_denied"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
)

const (
	ParamError            = "error"
	ParamErrorDescription = "error_description"
	ParamState            = "state"
	ParamCode             = "code"
)

var (
	ErrNoToken      = errors.New("no token found - please authenticate first")
	ErrTokenExpired = errors.New("token expired and no refresh token available")
	ErrNoAthlete    = errors.New("token response carries no athlete")
)
