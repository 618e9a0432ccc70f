package middleware

import (
	"net/http"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/xhttp"
	"github.com/garrettladley/fitmetrics/internal/xslog"
)

// RateLimitWithBackend applies IP-based rate limiting.
func RateLimitWithBackend(backend storage.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := xhttp.GetRequestIP(r)

			result, err := backend.Allow(ctx, ip)
			if err != nil {
				xslog.FromContext(ctx).ErrorContext(ctx, "rate limit check failed",
					xslog.ErrorGroup(err),
					xslog.IP(ip),
				)
				apperr.WriteError(ctx, w, apperr.ServiceUnavailable("rate_limit_unavailable", "rate limit check failed"))
				return
			}

			if !result.Allowed {
				apperr.WriteError(ctx, w, apperr.TooManyRequests("rate_limited", "too many requests", result.RetryAfter, "ip_rate_limit"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
