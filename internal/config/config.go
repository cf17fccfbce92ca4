package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"

	"github.com/dev-bikash-roy/briloai/internal/releasedate"
	"github.com/dev-bikash-roy/briloai/internal/titles"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL is optional; without it the release archive is disabled.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBMinConns  int32  `envconfig:"BRILOAI_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"BRILOAI_DB_MAX_CONNS" default:"8"`

	WebhookToken       string `envconfig:"WEBHOOK_TOKEN" default:""`
	WebhookTokenBcrypt string `envconfig:"WEBHOOK_TOKEN_BCRYPT" default:""`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"120s"`
	RedisURL     string        `envconfig:"REDIS_URL" default:""`

	SourcesFile  string        `envconfig:"SOURCES_FILE" default:""`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"12s"`
	FetchRetries int           `envconfig:"FETCH_RETRIES" default:"1"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"GBNY-Brilo/1.1 (+contact@gbny.com)"`
	FeedTimezone string        `envconfig:"FEED_TIMEZONE" default:"UTC"`

	SimilarityThreshold    float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.8"`
	HistoricalCutoffMonths int     `envconfig:"HISTORICAL_CUTOFF_MONTHS" default:"6"`
	MinPlausibleYear       int     `envconfig:"MIN_PLAUSIBLE_YEAR" default:"2020"`
	MaxYearsAhead          int     `envconfig:"MAX_YEARS_AHEAD" default:"2"`

	DefaultLimit int `envconfig:"DEFAULT_LIMIT" default:"15"`
	MaxLimit     int `envconfig:"MAX_LIMIT" default:"50"`
	DefaultPages int `envconfig:"DEFAULT_PAGES" default:"2"`
	MaxPages     int `envconfig:"MAX_PAGES" default:"10"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("BRILOAI_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("BRILOAI_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("BRILOAI_DB_MIN_CONNS (%d) cannot exceed BRILOAI_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}

	switch c.CacheBackendName() {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of memory, redis, none")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must be >= 0")
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be > 0")
	}
	if c.FetchRetries < 0 {
		return fmt.Errorf("FETCH_RETRIES must be >= 0")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(c.FeedTimezone)); err != nil {
		return fmt.Errorf("FEED_TIMEZONE %q is invalid: %w", c.FeedTimezone, err)
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.HistoricalCutoffMonths < 1 || c.HistoricalCutoffMonths > 12 {
		return fmt.Errorf("HISTORICAL_CUTOFF_MONTHS must be between 1 and 12")
	}
	if c.MinPlausibleYear < 1970 {
		return fmt.Errorf("MIN_PLAUSIBLE_YEAR must be >= 1970")
	}
	if c.MaxYearsAhead < 0 {
		return fmt.Errorf("MAX_YEARS_AHEAD must be >= 0")
	}

	if c.MaxLimit < 1 {
		return fmt.Errorf("MAX_LIMIT must be >= 1")
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("DEFAULT_LIMIT must be between 1 and MAX_LIMIT (%d)", c.MaxLimit)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be >= 1")
	}
	if c.DefaultPages < 1 || c.DefaultPages > c.MaxPages {
		return fmt.Errorf("DEFAULT_PAGES must be between 1 and MAX_PAGES (%d)", c.MaxPages)
	}
	return nil
}

// ArchiveEnabled reports whether a database is configured.
func (c *Config) ArchiveEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

func (c *Config) CacheBackendName() string {
	if c == nil {
		return CacheBackendNone
	}
	return strings.ToLower(strings.TrimSpace(c.CacheBackend))
}

// Location returns the feed time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(strings.TrimSpace(c.FeedTimezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) DatePolicy() releasedate.Policy {
	policy := releasedate.DefaultPolicy()
	if c == nil {
		return policy
	}
	policy.HistoricalCutoffMonths = c.HistoricalCutoffMonths
	policy.MinPlausibleYear = c.MinPlausibleYear
	policy.MaxYearsAhead = c.MaxYearsAhead
	return policy
}

func (c *Config) TitleMatcher() titles.Matcher {
	matcher := titles.DefaultMatcher()
	if c != nil {
		matcher.Threshold = c.SimilarityThreshold
	}
	return matcher
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
