package storage

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed ratelimit.lua
var rateLimitLua string

var rateLimitScript = redis.NewScript(rateLimitLua)

type rateLimitParams struct {
	window time.Duration
	limit  int
	ttl    time.Duration
}

func (p rateLimitParams) args() []any {
	return []any{
		p.window.Milliseconds(),
		p.limit,
		int(p.ttl.Seconds()),
	}
}

// parseRateLimitReply turns the script's {allowed, retry_after_ms} reply
// into a result. A denied reply without a wait falls back to the window.
func parseRateLimitReply(reply []int64, window time.Duration) (RateLimitResult, error) {
	if len(reply) != 2 {
		return RateLimitResult{}, fmt.Errorf("unexpected rate limit reply %v", reply)
	}
	if reply[0] == 1 {
		return RateLimitResult{Allowed: true}, nil
	}
	retry := time.Duration(reply[1]) * time.Millisecond
	if retry <= 0 {
		retry = window
	}
	return RateLimitResult{RetryAfter: retry}, nil
}

func runRateLimitScript(ctx context.Context, client *redis.Client, key string, params rateLimitParams) (RateLimitResult, error) {
	reply, err := rateLimitScript.Run(ctx, client,
		[]string{key},
		params.args()...,
	).Int64Slice()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	return parseRateLimitReply(reply, params.window)
}
