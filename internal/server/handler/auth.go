package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/oauth"
	"github.com/garrettladley/fitmetrics/internal/service/auth"
	"github.com/garrettladley/fitmetrics/internal/xslog"
)

const paramReturnTo = "return_to"

type Auth struct {
	service auth.Service
}

func NewAuth(service auth.Service) *Auth {
	return &Auth{service: service}
}

// HandleAuthStart handles GET /auth/strava requests.
func (h *Auth) HandleAuthStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.service.StartAuth(ctx, auth.StartAuthRequest{
		ReturnTo: r.URL.Query().Get(paramReturnTo),
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidReturnTo) {
			apperr.WriteError(ctx, w, apperr.Validation(map[string]string{paramReturnTo: err.Error()}))
			return
		}
		apperr.WriteError(ctx, w, apperr.Internal("auth_start_failed", "failed to start auth", err))
		return
	}

	http.Redirect(w, r, result.AuthURL, http.StatusTemporaryRedirect)
}

type callbackResponse struct {
	Message   string `json:"message"`
	AthleteID int64  `json:"athlete_id"`
}

// HandleAuthCallback handles GET /auth/strava/callback requests.
func (h *Auth) HandleAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	result, err := h.service.HandleCallback(ctx, auth.CallbackRequest{
		State:     q.Get(oauth.ParamState),
		Code:      q.Get(oauth.ParamCode),
		ErrorCode: q.Get(oauth.ParamError),
		ErrorDesc: q.Get(oauth.ParamErrorDescription),
	})
	if err != nil {
		var authErr *auth.AuthError
		switch {
		case errors.As(err, &authErr):
			msg := authErr.ErrorDesc
			if msg == "" {
				msg = authErr.Error()
			}
			apperr.WriteError(ctx, w, apperr.BadRequest(authErr.ErrorCode, msg))
		case errors.Is(err, auth.ErrInvalidState):
			apperr.WriteError(ctx, w, apperr.BadRequest("invalid_state", "invalid or expired state parameter"))
		default:
			apperr.WriteError(ctx, w, apperr.BadGateway("auth_failed", "authentication failed", err))
		}
		return
	}

	xslog.FromContext(ctx).InfoContext(ctx, "athlete authorized", xslog.AthleteID(result.AthleteID))

	if result.ReturnTo == "" {
		apperr.WriteOK(w, callbackResponse{
			Message:   "Strava account connected",
			AthleteID: result.AthleteID,
		})
		return
	}
	http.Redirect(w, r, withAthleteID(result.ReturnTo, result.AthleteID), http.StatusFound)
}

func withAthleteID(returnTo string, athleteID int64) string {
	u, err := url.Parse(returnTo)
	if err != nil {
		return "/"
	}
	q := u.Query()
	q.Set("athlete_id", strconv.FormatInt(athleteID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
