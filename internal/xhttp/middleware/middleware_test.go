package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garrettladley/fitmetrics/internal/xcontext"
	"github.com/garrettladley/fitmetrics/internal/xhttp"
	go_json "github.com/goccy/go-json"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = xcontext.GetRequestID(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("request id missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("X-Request-ID = %q, want %q", got, seen)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if got := rec.Header().Get(xhttp.XFrameOpts); got != "DENY" {
		t.Errorf("%s = %q, want DENY", xhttp.XFrameOpts, got)
	}
}

func TestRequestIDKeepsIncomingUUID(t *testing.T) {
	t.Parallel()

	const incoming = "5f0c6f9e-2b7c-4c8a-9f4e-3d2a1b0c9e8d"
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "uuid is kept", header: incoming, keep: true},
		{name: "garbage is replaced", header: "not-a-uuid"},
		{name: "missing is minted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var seen string
			h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen, _ = xcontext.GetRequestID(r.Context())
			}))
			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(xhttp.XRequestID, tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if (seen == tt.header) != tt.keep {
				t.Errorf("request id = %q, header %q, keep = %v", seen, tt.header, tt.keep)
			}
			if seen == "" {
				t.Error("request id missing from context")
			}
		})
	}
}

func TestRequestIDWithIDFunc(t *testing.T) {
	t.Parallel()

	h := RequestID(WithIDFunc(func(*http.Request) string { return "fixed" }))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if got := rec.Header().Get(xhttp.XRequestID); got != "fixed" {
		t.Errorf("X-Request-ID = %q, want fixed", got)
	}

	// The default is not shared with the customized middleware.
	other := httptest.NewRecorder()
	RequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(other, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))
	if got := other.Header().Get(xhttp.XRequestID); got == "fixed" {
		t.Error("default RequestID reused a custom IDFunc")
	}
}

func TestSecurityHeadersNoStoreOnAPI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "/api/athletes/1/settings", want: "no-store"},
		{path: "/health", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			h := SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, tt.path, nil))
			if got := rec.Header().Get(xhttp.CacheControl); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggingReportsSubject(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logger(logger)(Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xcontext.SetAthleteID(r.Context(), 7)
		xcontext.SetActivityID(r.Context(), 42)
		w.WriteHeader(http.StatusNotFound)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/athletes/7", nil))

	var entry struct {
		Level   string `json:"level"`
		Request struct {
			AthleteID  int64 `json:"athlete_id"`
			ActivityID int64 `json:"activity_id"`
		} `json:"request"`
		Response struct {
			Status int `json:"status"`
		} `json:"response"`
	}
	if err := go_json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry.Level != "WARN" || entry.Request.AthleteID != 7 || entry.Request.ActivityID != 42 || entry.Response.Status != 404 {
		t.Errorf("log entry = %+v", entry)
	}
}
