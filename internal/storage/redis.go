package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisBackend)(nil)

const (
	rateLimitKeyPrefix = "ratelimit:"
	stateKeyPrefix     = "state:"
	reportKeyPrefix    = "reports:"
)

type RedisConfig struct {
	Client *redis.Client
}

type RedisBackend struct {
	client     *redis.Client
	rateLimit  int
	rateWindow time.Duration
}

func NewRedisBackend(cfg RedisConfig, rateLimit int) (*RedisBackend, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis backend requires a client")
	}
	return &RedisBackend{
		client:     cfg.Client,
		rateLimit:  rateLimit,
		rateWindow: time.Second,
	}, nil
}

func (r *RedisBackend) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	params := rateLimitParams{
		window: r.rateWindow,
		limit:  r.rateLimit,
		ttl:    r.rateWindow + time.Second,
	}

	return runRateLimitScript(ctx, r.client, rateLimitKeyPrefix+key, params)
}

func (r *RedisBackend) Set(ctx context.Context, state string, entry StateEntry, ttl time.Duration) error {
	data, err := go_json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal state entry: %w", err)
	}

	if err := r.client.Set(ctx, stateKeyPrefix+state, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}

func (r *RedisBackend) GetAndDelete(ctx context.Context, state string) (StateEntry, error) {
	key := stateKeyPrefix + state

	data, err := r.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return StateEntry{}, ErrNotFound
	}
	if err != nil {
		return StateEntry{}, fmt.Errorf("failed to get and delete state: %w", err)
	}

	var entry StateEntry
	if err := go_json.Unmarshal(data, &entry); err != nil {
		return StateEntry{}, fmt.Errorf("failed to unmarshal state entry: %w", err)
	}

	return entry, nil
}

func reportKey(athleteID int64) string {
	return reportKeyPrefix + strconv.FormatInt(athleteID, 10)
}

// GetReport reads one field of the athlete's report hash.
func (r *RedisBackend) GetReport(ctx context.Context, athleteID int64, name string, dst any) error {
	data, err := r.client.HGet(ctx, reportKey(athleteID), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}
	if err := go_json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return nil
}

// SetReport stores a report field. The whole hash expires ttl after the latest write.
func (r *RedisBackend) SetReport(ctx context.Context, athleteID int64, name string, report any, ttl time.Duration) error {
	data, err := go_json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	key := reportKey(athleteID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, name, data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set report: %w", err)
	}
	return nil
}

func (r *RedisBackend) InvalidateReports(ctx context.Context, athleteID int64) error {
	if err := r.client.Del(ctx, reportKey(athleteID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate reports: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
