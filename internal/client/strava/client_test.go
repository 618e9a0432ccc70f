package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rl := NewRateLimiter()
	rl.minInterval = 0
	return New(
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret"}),
		WithBaseURL(srv.URL),
		WithRateLimiter(rl),
	)
}

func TestActivitiesList(t *testing.T) {
	t.Parallel()
	after := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/athlete/activities" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("after") != "1735689600" || q.Get("per_page") != "200" || q.Get("page") != "2" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set(headerRateLimitLimit, "100,1000")
		w.Header().Set(headerRateLimitUsage, "7,70")
		_, _ = w.Write([]byte(`[{"id":1,"athlete":{"id":9},"name":"Lunch Ride","type":"Ride","sport_type":"Ride",
			"start_date":"2025-01-02T12:00:00Z","start_date_local":"2025-01-02T13:00:00Z",
			"distance":40000,"moving_time":5400,"weighted_average_watts":210,"device_watts":true}]`))
	}))

	got, err := c.Activities.List(context.Background(), &ListParams{After: &after, Page: 2, PerPage: 500})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("List() returned %d activities, want 1", len(got))
	}
	a := got[0]
	if a.Athlete.ID != 9 || a.Distance != 40000 || a.WeightedAverageWatts == nil || *a.WeightedAverageWatts != 210 || !a.DeviceWatts {
		t.Errorf("List() = %+v", a)
	}
	if a.AverageHeartrate != nil {
		t.Errorf("AverageHeartrate = %v, want nil", *a.AverageHeartrate)
	}

	short, daily := c.RateLimitStatus()
	if short != 93 || daily != 930 {
		t.Errorf("RateLimitStatus() = %d, %d, want 93, 930", short, daily)
	}
}

func TestActivitiesAllStopsOnShortPage(t *testing.T) {
	t.Parallel()
	var pages atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
		default:
			_, _ = w.Write([]byte(`[{"id":3}]`))
		}
	}))

	var ids []int64
	for a, err := range c.Activities.All(context.Background(), &ListParams{PerPage: 2}) {
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		ids = append(ids, a.ID)
	}
	if len(ids) != 3 || pages.Load() != 2 {
		t.Errorf("All() ids = %v over %d pages, want 3 ids over 2 pages", ids, pages.Load())
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`))
	}))

	_, err := c.Athlete.GetAuthenticated(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetAuthenticated() error = %v, want *APIError", err)
	}
	if !apiErr.IsUnauthorized() {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if want := "Authorization Error (Athlete.access_token invalid)"; apiErr.Message != want {
		t.Errorf("Message = %q, want %q", apiErr.Message, want)
	}
}
