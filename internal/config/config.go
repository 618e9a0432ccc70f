package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read by the fitctl CLI.
type Config struct {
	DBPath  string  `env:"FITMETRICS_DB"`
	Strava  Strava  `envPrefix:"STRAVA_"`
	Metrics Metrics
}

type Strava struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

func (s Strava) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

type Metrics struct {
	DefaultFTP      int           `env:"DEFAULT_FTP" envDefault:"245"`
	CalcConcurrency int           `env:"CALC_CONCURRENCY" envDefault:"4"`
	ReportCacheTTL  time.Duration `env:"REPORT_CACHE_TTL" envDefault:"5m"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}
