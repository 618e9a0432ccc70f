package strava

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/garrettladley/fitmetrics/internal/xhttp"
	"github.com/garrettladley/fitmetrics/internal/xslog"
	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

const BaseURL = "https://www.strava.com/api/v3"

type Client struct {
	Athlete    AthleteService
	Activities ActivityService

	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

func New(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	cfg := &clientConfig{
		baseURL:     BaseURL,
		tokenSource: tokenSource,
		logger:      slog.Default(),
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rateLimiter == nil {
		cfg.rateLimiter = NewRateLimiter()
	}

	transport := &stravaTransport{
		base:        xhttp.NewTransport(),
		tokenSource: cfg.tokenSource,
	}

	c := &Client{
		baseURL:     cfg.baseURL,
		httpClient:  &http.Client{Transport: transport, Timeout: cfg.timeout},
		rateLimiter: cfg.rateLimiter,
		logger:      cfg.logger,
	}

	c.Athlete = &athleteService{client: c}
	c.Activities = &activityService{client: c}

	return c
}

type clientConfig struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	timeout     time.Duration
	rateLimiter *RateLimiter
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

func WithRateLimiter(rl *RateLimiter) Option {
	return func(cfg *clientConfig) { cfg.rateLimiter = rl }
}

// RateLimitStatus reports the requests left in the short and daily windows.
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, result any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limit: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if info, err := ParseRateLimitHeaders(resp.Header); err != nil {
		c.logger.WarnContext(ctx, "unparseable strava rate limit headers", xslog.Error(err))
	} else if info != nil {
		c.rateLimiter.Update(*info)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

type stravaTransport struct {
	base        http.RoundTripper
	tokenSource oauth2.TokenSource
}

var _ http.RoundTripper = (*stravaTransport)(nil)

func (t *stravaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}
