package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR, default=:8080"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`

	API      APIConfig
	Realtime RealtimeConfig
	Redis    RedisConfig
}

// APIConfig points the console at the marketplace backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL,   default=http://localhost:8000/api"`
	Timeout time.Duration `env:"API_TIMEOUT,    default=10s"`
	// RateLimit is the sustained outbound request rate per second.
	RateLimit float64 `env:"API_RATE_LIMIT, default=20"`
	RateBurst int     `env:"API_RATE_BURST, default=10"`
}

type RealtimeConfig struct {
	Enabled bool `env:"WS_ENABLED, default=true"`
	// URL defaults to API_BASE_URL with a ws scheme.
	URL string `env:"WS_URL"`
}

// RedisConfig selects durable session storage. An empty Addr keeps the
// session in memory only.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,     default=0"`
	Prefix   string `env:"REDIS_PREFIX, default=marketplace:"`
}

// Pretty reports whether logs should be written for humans.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.API.RateBurst < 1 {
		cfg.API.RateBurst = 1
	}
	return &cfg, nil
}
