package middleware

import (
	"net/http"
	"strings"

	"github.com/garrettladley/fitmetrics/internal/xhttp"
)

const apiPrefix = "/api/"

// SecurityHeaders sets browser hardening headers on every response. API
// responses carry athlete data and are additionally marked uncacheable.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(xhttp.XContentTypeOpts, "nosniff")
		w.Header().Set(xhttp.XFrameOpts, "DENY")
		w.Header().Set(xhttp.ReferrerPolicy, "strict-origin-when-cross-origin")
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			xhttp.SetHeaderNoStore(w)
		}
		next.ServeHTTP(w, r)
	})
}
