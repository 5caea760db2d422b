// Package config loads the client configuration from defaults, an optional YAML
// file and NEWSCLIENT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"newsclient/internal/domain/entity"
	envcfg "newsclient/pkg/config"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// ClientConfig holds every tunable of the news client.
type ClientConfig struct {
	API           APIConfig           `yaml:"api"`
	Feed          FeedConfig          `yaml:"feed"`
	Cache         CacheConfig         `yaml:"cache"`
	Reader        ReaderConfig        `yaml:"reader"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// APIConfig configures the REST transport.
type APIConfig struct {
	// BaseURL is the API root; endpoint paths such as /news/ are appended to it.
	BaseURL string `yaml:"base_url"`
	// Timeout bounds a single HTTP exchange. Default: 15s
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit is the sustained outbound request rate (req/s). Default: 10
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the token bucket size. Default: 20
	RateBurst int `yaml:"rate_burst"`
}

// FeedConfig configures feed pagination, freshness and retry.
type FeedConfig struct {
	Language entity.Language `yaml:"language"`
	PerPage  int             `yaml:"per_page"`
	// StaleTime is how long a fetched page is reused without refetching. Default: 5m
	StaleTime time.Duration `yaml:"stale_time"`
	// Retries is the number of automatic retries after a transient failure. Default: 1
	Retries int `yaml:"retries"`
	// RetryDelay is the wait before the first retry. Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// CacheConfig selects the page cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	// Retention is how long Redis keeps page entries; freshness is still decided by StaleTime.
	Retention time.Duration `yaml:"retention"`
}

// ReaderConfig configures full-article reading.
type ReaderConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodySize    int64         `yaml:"max_body_size"`
	MaxRedirects   int           `yaml:"max_redirects"`
	DenyPrivateIPs bool          `yaml:"deny_private_ips"`
}

// ObservabilityConfig configures logging and metrics.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// MetricsAddr enables the Prometheus endpoint when non-empty (e.g. ":9091").
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultClientConfig returns the built-in defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			RateBurst: 20,
		},
		Feed: FeedConfig{
			Language:   entity.LanguageEnglish,
			PerPage:    entity.DefaultPerPage,
			StaleTime:  5 * time.Minute,
			Retries:    1,
			RetryDelay: 1 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendMemory,
			RedisAddr: "localhost:6379",
			Retention: time.Hour,
		},
		Reader: ReaderConfig{
			Enabled:        true,
			Timeout:        10 * time.Second,
			MaxBodySize:    10 * 1024 * 1024,
			MaxRedirects:   5,
			DenyPrivateIPs: true,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// LoadClientConfig builds the configuration: defaults, then the YAML file named by
// NEWSCLIENT_CONFIG_FILE (if any), then environment overrides. The result is validated.
func LoadClientConfig() (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path := os.Getenv("NEWSCLIENT_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}
	return &cfg, nil
}

// loadFile overlays the YAML file at path onto cfg.
// The path comes from the operator's environment, not from remote input.
func loadFile(path string, cfg *ClientConfig) error {
	// #nosec G304 -- path is provided by the operator via NEWSCLIENT_CONFIG_FILE
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *ClientConfig) {
	cfg.API.BaseURL = envcfg.String("NEWSCLIENT_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Timeout = envcfg.Duration("NEWSCLIENT_HTTP_TIMEOUT", cfg.API.Timeout)
	cfg.API.RateLimit = envcfg.Float("NEWSCLIENT_RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.RateBurst = envcfg.Int("NEWSCLIENT_RATE_BURST", cfg.API.RateBurst)

	cfg.Feed.Language = entity.Language(envcfg.String("NEWSCLIENT_LANGUAGE", string(cfg.Feed.Language)))
	cfg.Feed.PerPage = envcfg.Int("NEWSCLIENT_PER_PAGE", cfg.Feed.PerPage)
	cfg.Feed.StaleTime = envcfg.Duration("NEWSCLIENT_STALE_TIME", cfg.Feed.StaleTime)
	cfg.Feed.Retries = envcfg.Int("NEWSCLIENT_FETCH_RETRIES", cfg.Feed.Retries)
	cfg.Feed.RetryDelay = envcfg.Duration("NEWSCLIENT_RETRY_DELAY", cfg.Feed.RetryDelay)

	cfg.Cache.Backend = envcfg.String("NEWSCLIENT_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.RedisAddr = envcfg.String("NEWSCLIENT_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisDB = envcfg.Int("NEWSCLIENT_REDIS_DB", cfg.Cache.RedisDB)
	cfg.Cache.Retention = envcfg.Duration("NEWSCLIENT_CACHE_RETENTION", cfg.Cache.Retention)

	cfg.Reader.Enabled = envcfg.Bool("NEWSCLIENT_READER_ENABLED", cfg.Reader.Enabled)
	cfg.Reader.Timeout = envcfg.Duration("NEWSCLIENT_READER_TIMEOUT", cfg.Reader.Timeout)
	cfg.Reader.MaxBodySize = envcfg.Int64("NEWSCLIENT_READER_MAX_BODY", cfg.Reader.MaxBodySize)
	cfg.Reader.MaxRedirects = envcfg.Int("NEWSCLIENT_READER_MAX_REDIRECTS", cfg.Reader.MaxRedirects)
	cfg.Reader.DenyPrivateIPs = envcfg.Bool("NEWSCLIENT_READER_DENY_PRIVATE_IPS", cfg.Reader.DenyPrivateIPs)

	cfg.Observability.LogLevel = envcfg.String("LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.LogFormat = envcfg.String("NEWSCLIENT_LOG_FORMAT", cfg.Observability.LogFormat)
	cfg.Observability.MetricsAddr = envcfg.String("NEWSCLIENT_METRICS_ADDR", cfg.Observability.MetricsAddr)
}

// Validate checks configuration correctness.
func (c *ClientConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_API_BASE_URL must be an absolute http(s) URL, got %q", c.API.BaseURL))
	}
	if err := envcfg.Positive("NEWSCLIENT_HTTP_TIMEOUT", c.API.Timeout); err != nil {
		errs = append(errs, err)
	}
	if c.API.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_RATE_LIMIT must be positive"))
	}
	if c.API.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_RATE_BURST must be at least 1"))
	}

	if !c.Feed.Language.Valid() {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_LANGUAGE must be one of: en, np"))
	}
	if c.Feed.PerPage < 1 || c.Feed.PerPage > 100 {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_PER_PAGE must be between 1 and 100"))
	}
	if err := envcfg.Within("NEWSCLIENT_STALE_TIME", c.Feed.StaleTime, 0, 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if c.Feed.Retries < 0 || c.Feed.Retries > 5 {
		errs = append(errs, fmt.Errorf("NEWSCLIENT_FETCH_RETRIES must be between 0 and 5"))
	}
	if err := envcfg.NonNegative("NEWSCLIENT_RETRY_DELAY", c.Feed.RetryDelay); err != nil {
		errs = append(errs, err)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("NEWSCLIENT_REDIS_ADDR is required for the redis cache backend"))
		}
		if err := envcfg.Positive("NEWSCLIENT_CACHE_RETENTION", c.Cache.Retention); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("NEWSCLIENT_CACHE_BACKEND must be %q or %q", CacheBackendMemory, CacheBackendRedis))
	}

	if c.Reader.Enabled {
		if err := envcfg.Positive("NEWSCLIENT_READER_TIMEOUT", c.Reader.Timeout); err != nil {
			errs = append(errs, err)
		}
		if c.Reader.MaxBodySize <= 0 {
			errs = append(errs, fmt.Errorf("NEWSCLIENT_READER_MAX_BODY must be positive"))
		}
	}

	return errors.Join(errs...)
}
