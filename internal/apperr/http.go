package apperr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/garrettladley/fitmetrics/internal/xhttp"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	go_json "github.com/goccy/go-json"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteError renders err as JSON. Errors that are not *Error become a 500.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			writeRateLimitError(w, rlErr)
			return
		}
		appErr = Internal("internal_error", "an unexpected error occurred", err)
	}

	logError(ctx, appErr)

	xhttp.SetHeaderContentTypeApplicationJSON(w)
	w.WriteHeader(appErr.StatusCode)
	_ = go_json.NewEncoder(w).Encode(errorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

func writeRateLimitError(w http.ResponseWriter, err *RateLimitError) {
	xhttp.SetHeaderContentTypeApplicationJSON(w)
	xhttp.SetHeaderRetryAfter(w, err.RetryAfter)
	if err.Reason != "" {
		w.Header().Set(xhttp.XRateLimitReason, err.Reason)
	}
	w.WriteHeader(http.StatusTooManyRequests)
	_ = go_json.NewEncoder(w).Encode(errorResponse{
		Error:   err.Code,
		Message: err.Message,
	})
}

func logError(ctx context.Context, err *Error) {
	logger := xslog.FromContext(ctx)
	attrs := []any{
		xslog.HTTPStatus(err.StatusCode),
		slog.String("code", err.Code),
	}
	if err.Cause != nil {
		attrs = append(attrs, xslog.Error(err.Cause))
	}

	switch err.StatusCode / 100 {
	case 5:
		logger.ErrorContext(ctx, "server error", attrs...)
	case 4:
		logger.WarnContext(ctx, "client error", attrs...)
	default:
		logger.InfoContext(ctx, "error response", attrs...)
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	xhttp.WriteJSON(w, status, data)
}

func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}
