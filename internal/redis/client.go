package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "fitmetrics"
	pingTimeout = 5 * time.Second
)

// Config is optional for the server. Without a URL it keeps OAuth state,
// rate limits and cached reports in process memory.
type Config struct {
	URL      string `env:"URL"`
	PoolSize int    `env:"POOL_SIZE"`
}

func (c Config) Enabled() bool { return c.URL != "" }

func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opt.ClientName = clientName
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
