package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garrettladley/fitmetrics/internal/storage"
)

type stubLimiter struct {
	result storage.RateLimitResult
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (storage.RateLimitResult, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func TestRateLimitWithBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		limiter    *stubLimiter
		wantStatus int
		wantRetry  string
	}{
		{
			name:       "allowed",
			limiter:    &stubLimiter{result: storage.RateLimitResult{Allowed: true}},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "limited",
			limiter:    &stubLimiter{result: storage.RateLimitResult{RetryAfter: 3 * time.Second}},
			wantStatus: http.StatusTooManyRequests,
			wantRetry:  "3",
		},
		{
			name:       "backend failure",
			limiter:    &stubLimiter{err: errors.New("redis down")},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = "203.0.113.7:5555"
			rec := httptest.NewRecorder()

			RateLimitWithBackend(tt.limiter)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != "203.0.113.7" {
				t.Errorf("limiter keys = %v, want [203.0.113.7]", tt.limiter.keys)
			}
		})
	}
}
