package strava

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	headerRateLimitLimit = "X-RateLimit-Limit"
	headerRateLimitUsage = "X-RateLimit-Usage"

	defaultShortLimit  = 100
	defaultDailyLimit  = 1000
	shortWindow        = 15 * time.Minute
	defaultMinInterval = 150 * time.Millisecond
)

// RateLimitInfo is the pair of windows Strava reports on every response.
// Both headers carry "short,daily" values.
type RateLimitInfo struct {
	ShortLimit int
	DailyLimit int
	ShortUsage int
	DailyUsage int
}

// ParseRateLimitHeaders returns nil when the response carries no rate limit headers.
func ParseRateLimitHeaders(h http.Header) (*RateLimitInfo, error) {
	limit := h.Get(headerRateLimitLimit)
	usage := h.Get(headerRateLimitUsage)
	if limit == "" && usage == "" {
		return nil, nil
	}

	var info RateLimitInfo
	var err error
	if info.ShortLimit, info.DailyLimit, err = parsePair(limit); err != nil {
		return nil, fmt.Errorf("%s: %w", headerRateLimitLimit, err)
	}
	if info.ShortUsage, info.DailyUsage, err = parsePair(usage); err != nil {
		return nil, fmt.Errorf("%s: %w", headerRateLimitUsage, err)
	}
	return &info, nil
}

func parsePair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed pair %q", s)
	}
	first, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed pair %q: %w", s, err)
	}
	second, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed pair %q: %w", s, err)
	}
	return first, second, nil
}

// RateLimiter spaces requests and blocks once the short or daily window is
// exhausted. Server-reported usage replaces the local count when available.
type RateLimiter struct {
	mu          sync.Mutex
	info        RateLimitInfo
	minInterval time.Duration
	lastRequest time.Time
	windowStart time.Time
	dayStart    time.Time
	now         func() time.Time
}

func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		info: RateLimitInfo{
			ShortLimit: defaultShortLimit,
			DailyLimit: defaultDailyLimit,
		},
		minInterval: defaultMinInterval,
		windowStart: now.Truncate(shortWindow),
		dayStart:    startOfDayUTC(now),
		now:         time.Now,
	}
}

func startOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		d := r.reserve()
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve claims a request slot and returns zero, or returns how long to
// wait before trying again.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.roll(now)

	if r.info.DailyUsage >= r.info.DailyLimit {
		return r.dayStart.Add(24 * time.Hour).Sub(now)
	}
	if r.info.ShortUsage >= r.info.ShortLimit {
		return r.windowStart.Add(shortWindow).Sub(now)
	}
	if since := now.Sub(r.lastRequest); since < r.minInterval {
		return r.minInterval - since
	}

	r.lastRequest = now
	r.info.ShortUsage++
	r.info.DailyUsage++
	return 0
}

func (r *RateLimiter) roll(now time.Time) {
	if ws := now.Truncate(shortWindow); ws.After(r.windowStart) {
		r.windowStart = ws
		r.info.ShortUsage = 0
	}
	if ds := startOfDayUTC(now); ds.After(r.dayStart) {
		r.dayStart = ds
		r.info.DailyUsage = 0
	}
}

// Update replaces local state with the values Strava reported.
func (r *RateLimiter) Update(info RateLimitInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info.ShortLimit > 0 {
		r.info.ShortLimit = info.ShortLimit
	}
	if info.DailyLimit > 0 {
		r.info.DailyLimit = info.DailyLimit
	}
	r.info.ShortUsage = info.ShortUsage
	r.info.DailyUsage = info.DailyUsage
}

func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roll(r.now())
	return max(0, r.info.ShortLimit-r.info.ShortUsage), max(0, r.info.DailyLimit-r.info.DailyUsage)
}
