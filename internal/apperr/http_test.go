package apperr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   errorResponse
	}{
		{
			name:       "not found",
			err:        NotFound("activity_not_found", "activity not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   errorResponse{Error: "activity_not_found", Message: "activity not found"},
		},
		{
			name:       "validation carries fields",
			err:        Validation(map[string]string{"ftp": "must be positive"}),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: errorResponse{
				Error:   "validation_failed",
				Message: "request validation failed",
				Fields:  map[string]string{"ftp": "must be positive"},
			},
		},
		{
			name:       "plain errors become internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   errorResponse{Error: "internal_error", Message: "an unexpected error occurred"},
		},
		{
			name:       "rate limit",
			err:        TooManyRequests("rate_limited", "slow down", 2*time.Second, "ip_rate_limit"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   errorResponse{Error: "rate_limited", Message: "slow down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			WriteError(context.Background(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got errorResponse
			if err := go_json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if diff := cmp.Diff(tt.wantBody, got); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteErrorRetryAfter(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, TooManyRequests("rate_limited", "slow down", 3*time.Second, "ip_rate_limit"))

	if got := rec.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}
}
