package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/shopfront/pkg/config"
)

// Config holds all configuration for the storefront service. Optional
// backends (Postgres catalog, Redis sessions, Kafka events, phrasing
// service) are enabled by setting their address; empty means the local
// default (seed catalog, in-memory sessions, no events, canned phrasing).
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SHOPFRONT_HTTP_PORT" envDefault:"8080"`

	// Catalog: when set, loaded once at boot from the products table.
	CatalogDSN string `env:"CATALOG_DSN" envDefault:""`

	// Session state store
	RedisAddr       string `env:"REDIS_ADDR" envDefault:""`
	RedisPass       string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"168"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"" envSeparator:","`

	// Phrasing service
	PhrasingURL       string `env:"PHRASING_URL" envDefault:""`
	PhrasingTimeoutMS int    `env:"PHRASING_TIMEOUT_MS" envDefault:"1500"`

	// Rate limiting, keyed per session (or client IP without one).
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Observability
	TracingEnabled  bool     `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string   `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64  `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
	PprofCIDRs      []string `env:"PPROF_ALLOW_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load shopfront config: %w", err)
	}
	cfg.KafkaBrokers = dropEmpty(cfg.KafkaBrokers)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SessionTTL returns the session TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// PhrasingTimeout returns the phrasing call timeout as a duration.
func (c *Config) PhrasingTimeout() time.Duration {
	return time.Duration(c.PhrasingTimeoutMS) * time.Millisecond
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("invalid session TTL: %d hours", c.SessionTTLHours)
	}
	if c.PhrasingTimeoutMS < 1 {
		return fmt.Errorf("invalid phrasing timeout: %d ms", c.PhrasingTimeoutMS)
	}
	if c.RateLimitRPS < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit: %d rps, burst %d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

// dropEmpty removes empty entries produced by an unset comma-separated var.
func dropEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
