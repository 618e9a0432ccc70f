package server

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/garrettladley/fitmetrics/internal/config"
	appenv "github.com/garrettladley/fitmetrics/internal/env"
	xredis "github.com/garrettladley/fitmetrics/internal/redis"
)

const callbackPath = "/auth/strava/callback"

type Config struct {
	Port        string             `env:"PORT" envDefault:"8080"`
	Env         appenv.Environment `env:"ENV" envDefault:"development"`
	BaseURL     string             `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string             `env:"DATABASE_URL" envDefault:"fitmetrics.db"`
	Redis       xredis.Config      `envPrefix:"REDIS_"`
	Strava      config.Strava      `envPrefix:"STRAVA_"`
	Metrics     config.Metrics
	RateLimit   RateLimit `envPrefix:"RATE_"`
}

type RateLimit struct {
	Limit float64 `env:"LIMIT" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

// UsesPostgres reports whether DatabaseURL names a PostgreSQL database rather
// than a sqlite file.
func (c Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// StravaConfig fills the redirect URL from BaseURL when it is not set.
func (c Config) StravaConfig() config.Strava {
	s := c.Strava
	if s.RedirectURL == "" {
		s.RedirectURL = strings.TrimSuffix(c.BaseURL, "/") + callbackPath
	}
	return s
}

func ReadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
