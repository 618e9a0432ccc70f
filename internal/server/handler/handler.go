package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/client/strava"
	"github.com/garrettladley/fitmetrics/internal/oauth"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
	"github.com/garrettladley/fitmetrics/internal/validator"
	"github.com/garrettladley/fitmetrics/internal/xcontext"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	go_json "github.com/goccy/go-json"
)

const (
	pathAthleteID  = "athleteID"
	pathActivityID = "activityID"
)

// athleteResolver turns the {athleteID} path value into a known athlete.
type athleteResolver struct {
	athletes repository.AthleteRepository
}

// resolve writes the error response itself and reports false when the
// request cannot continue.
func (a athleteResolver) resolve(w http.ResponseWriter, r *http.Request) (int64, bool) {
	ctx := r.Context()
	id, err := pathID(r, pathAthleteID)
	if err != nil {
		apperr.WriteError(ctx, w, apperr.BadRequest("invalid_athlete_id", err.Error()))
		return 0, false
	}
	if _, err := a.athletes.Get(ctx, id); err != nil {
		writeServiceError(ctx, w, err)
		return 0, false
	}
	xcontext.SetAthleteID(ctx, id)
	xslog.FromContext(ctx).DebugContext(ctx, "resolved athlete", xslog.AthleteID(id))
	return id, true
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// intQuery reads an optional integer query parameter within [lo, hi].
func intQuery(r *http.Request, name string, def, lo, hi int) (int, *apperr.Error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, apperr.Validation(map[string]string{
			name: fmt.Sprintf("must be an integer between %d and %d", lo, hi),
		})
	}
	return v, nil
}

// decodeBody decodes an optional JSON body into dst and validates it. An
// empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) *apperr.Error {
	if err := go_json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.BadRequest("invalid_body", "request body must be valid JSON")
	}
	if v, ok := dst.(validator.Validator); ok {
		return validator.Validate(v)
	}
	return nil
}

type emptyReport struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// writeReport answers 200 with a null payload when there is nothing to
// analyze so callers can tell an empty window from a zero result.
func writeReport(ctx context.Context, w http.ResponseWriter, report any, err error) {
	switch {
	case errors.Is(err, analytics.ErrNoData):
		apperr.WriteOK(w, emptyReport{Message: "no computed metrics found, run the calculator first"})
	case err != nil:
		writeServiceError(ctx, w, err)
	default:
		apperr.WriteOK(w, report)
	}
}

func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *strava.APIError
	switch {
	case errors.Is(err, repository.ErrAthleteNotFound):
		err = apperr.NotFound("athlete_not_found", "athlete not found")
	case errors.Is(err, repository.ErrActivityNotFound):
		err = apperr.NotFound("activity_not_found", "activity not found")
	case errors.Is(err, analytics.ErrSetupRequired):
		err = apperr.BadRequest("setup_required", analytics.ErrSetupRequired.Error())
	case errors.Is(err, athlete.ErrInvalidFTP):
		err = apperr.Validation(map[string]string{"ftp": athlete.ErrInvalidFTP.Error()})
	case errors.Is(err, oauth.ErrNoToken), errors.Is(err, oauth.ErrTokenExpired):
		err = apperr.Unauthorized("strava_not_connected", "connect a Strava account first")
	case errors.As(err, &apiErr) && apiErr.IsRateLimited():
		err = apperr.TooManyRequests("strava_rate_limited", "Strava rate limit reached, retry later", 0, "strava_rate_limit")
	case errors.As(err, &apiErr):
		err = apperr.BadGateway("strava_error", "Strava request failed", err)
	}
	apperr.WriteError(ctx, w, err)
}
