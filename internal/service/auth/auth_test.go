package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/auth"
	"github.com/garrettladley/fitmetrics/internal/storage"
	"github.com/garrettladley/fitmetrics/internal/testutil"
	"golang.org/x/oauth2"
)

func newService(t *testing.T) (*auth.OAuth, *repository.Repository) {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"Bearer","access_token":"access","refresh_token":"refresh",
			"expires_in":21600,"athlete":{"id":4242,"username":"climber","firstname":"Ada","lastname":"B"}}`))
	}))
	t.Cleanup(tokenServer.Close)

	cfg := &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/auth/strava/callback",
		Scopes:       []string{"read,activity:read_all"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://www.strava.com/oauth/authorize",
			TokenURL:  tokenServer.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	backend := storage.NewMemoryBackend(10, 10)
	t.Cleanup(func() { _ = backend.Close() })

	repo := repository.New(testutil.OpenDB(t))
	return auth.NewOAuth(cfg, backend, repo.Athletes), repo
}

func startState(t *testing.T, svc *auth.OAuth, returnTo string) string {
	t.Helper()
	res, err := svc.StartAuth(context.Background(), auth.StartAuthRequest{ReturnTo: returnTo})
	if err != nil {
		t.Fatalf("StartAuth() error = %v", err)
	}
	u, err := url.Parse(res.AuthURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := u.Query()
	if q.Get("approval_prompt") != "auto" || q.Get("scope") != "read,activity:read_all" {
		t.Errorf("auth url query = %v", q)
	}
	return q.Get("state")
}

func TestHandleCallbackStoresAthlete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo := newService(t)

	state := startState(t, svc, "/dashboard")
	got, err := svc.HandleCallback(ctx, auth.CallbackRequest{State: state, Code: "good-code"})
	if err != nil {
		t.Fatalf("HandleCallback() error = %v", err)
	}
	if got.ReturnTo != "/dashboard" {
		t.Errorf("ReturnTo = %q, want /dashboard", got.ReturnTo)
	}

	athlete, err := repo.Athletes.Get(ctx, got.AthleteID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if athlete.StravaID == nil || *athlete.StravaID != 4242 || athlete.FirstName != "Ada" {
		t.Errorf("stored athlete = %+v", athlete)
	}
	token, err := repo.Athletes.GetToken(ctx, got.AthleteID)
	if err != nil || token == nil || token.AccessToken != "access" {
		t.Errorf("stored token = %+v, %v", token, err)
	}

	if _, err := svc.HandleCallback(ctx, auth.CallbackRequest{State: state, Code: "good-code"}); !errors.Is(err, auth.ErrInvalidState) {
		t.Errorf("replayed state error = %v, want ErrInvalidState", err)
	}
}

func TestHandleCallbackErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.HandleCallback(ctx, auth.CallbackRequest{}); !errors.Is(err, auth.ErrInvalidState) {
		t.Errorf("empty state error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.HandleCallback(ctx, auth.CallbackRequest{State: "unknown", Code: "good-code"}); !errors.Is(err, auth.ErrInvalidState) {
		t.Errorf("unknown state error = %v, want ErrInvalidState", err)
	}

	_, err := svc.HandleCallback(ctx, auth.CallbackRequest{State: startState(t, svc, ""), ErrorCode: "access_denied"})
	var authErr *auth.AuthError
	if !errors.As(err, &authErr) || !errors.Is(err, auth.ErrAuthDenied) || authErr.ErrorCode != "access_denied" {
		t.Errorf("denied error = %v, want AuthError wrapping ErrAuthDenied", err)
	}

	if _, err := svc.HandleCallback(ctx, auth.CallbackRequest{State: startState(t, svc, ""), Code: "bad-code"}); err == nil {
		t.Error("HandleCallback(bad code) error = nil")
	}
}

func TestStartAuthRejectsForeignReturnTo(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	for _, returnTo := range []string{"https://evil.example", "//evil.example", "dashboard"} {
		if _, err := svc.StartAuth(context.Background(), auth.StartAuthRequest{ReturnTo: returnTo}); !errors.Is(err, auth.ErrInvalidReturnTo) {
			t.Errorf("StartAuth(%q) error = %v, want ErrInvalidReturnTo", returnTo, err)
		}
	}
}
