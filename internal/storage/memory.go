package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

var _ Backend = (*MemoryBackend)(nil)

type stateWithTTL struct {
	entry StateEntry
	ttl   time.Duration
}

type cachedReport struct {
	data      []byte
	expiresAt time.Time
}

type MemoryBackend struct {
	// Rate limiting
	limiters  map[string]*rate.Limiter
	limiterMu sync.RWMutex
	rateLimit rate.Limit
	rateBurst int

	// State storage
	states   map[string]stateWithTTL
	statesMu sync.RWMutex

	// Report cache
	reports   map[int64]map[string]cachedReport
	reportsMu sync.RWMutex

	// Cleanup
	done chan struct{}
	once sync.Once
}

func NewMemoryBackend(ratePerSec float64, burst int) *MemoryBackend {
	m := &MemoryBackend{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(ratePerSec),
		rateBurst: burst,
		states:    make(map[string]stateWithTTL),
		reports:   make(map[int64]map[string]cachedReport),
		done:      make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *MemoryBackend) Allow(_ context.Context, key string) (RateLimitResult, error) {
	limiter := m.limiter(key)
	if limiter.Allow() {
		return RateLimitResult{Allowed: true}, nil
	}
	retryAfter := time.Second
	if m.rateLimit > 0 {
		retryAfter = time.Duration(float64(time.Second) / float64(m.rateLimit))
	}
	return RateLimitResult{Allowed: false, RetryAfter: retryAfter}, nil
}

func (m *MemoryBackend) limiter(key string) *rate.Limiter {
	m.limiterMu.RLock()
	limiter, exists := m.limiters[key]
	m.limiterMu.RUnlock()
	if exists {
		return limiter
	}

	m.limiterMu.Lock()
	defer m.limiterMu.Unlock()

	if limiter, exists = m.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(m.rateLimit, m.rateBurst)
	m.limiters[key] = limiter
	return limiter
}

func (m *MemoryBackend) Set(_ context.Context, state string, entry StateEntry, ttl time.Duration) error {
	m.statesMu.Lock()
	m.states[state] = stateWithTTL{entry: entry, ttl: ttl}
	m.statesMu.Unlock()
	return nil
}

func (m *MemoryBackend) GetAndDelete(_ context.Context, state string) (StateEntry, error) {
	m.statesMu.Lock()
	s, ok := m.states[state]
	if ok {
		delete(m.states, state)
	}
	m.statesMu.Unlock()

	if !ok {
		return StateEntry{}, ErrNotFound
	}

	if time.Since(s.entry.CreatedAt) > s.ttl {
		return StateEntry{}, ErrNotFound
	}

	return s.entry, nil
}

func (m *MemoryBackend) GetReport(_ context.Context, athleteID int64, name string, dst any) error {
	m.reportsMu.RLock()
	r, ok := m.reports[athleteID][name]
	m.reportsMu.RUnlock()

	if !ok || time.Now().After(r.expiresAt) {
		return ErrNotFound
	}
	if err := go_json.Unmarshal(r.data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return nil
}

func (m *MemoryBackend) SetReport(_ context.Context, athleteID int64, name string, report any, ttl time.Duration) error {
	data, err := go_json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	m.reportsMu.Lock()
	defer m.reportsMu.Unlock()
	byName, ok := m.reports[athleteID]
	if !ok {
		byName = make(map[string]cachedReport)
		m.reports[athleteID] = byName
	}
	byName[name] = cachedReport{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryBackend) InvalidateReports(_ context.Context, athleteID int64) error {
	m.reportsMu.Lock()
	delete(m.reports, athleteID)
	m.reportsMu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryBackend) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryBackend) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()

			m.statesMu.Lock()
			for state, s := range m.states {
				if now.Sub(s.entry.CreatedAt) > s.ttl {
					delete(m.states, state)
				}
			}
			m.statesMu.Unlock()

			m.reportsMu.Lock()
			for athleteID, byName := range m.reports {
				for name, r := range byName {
					if now.After(r.expiresAt) {
						delete(byName, name)
					}
				}
				if len(byName) == 0 {
					delete(m.reports, athleteID)
				}
			}
			m.reportsMu.Unlock()
		case <-m.done:
			return
		}
	}
}
