// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// MaxPerPage bounds the configurable page sizes.
const MaxPerPage = 100

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"OCMS_DB_PATH" envDefault:"./data/ocms.db"`
	ServerHost string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel   string `env:"OCMS_LOG_LEVEL" envDefault:"info"`

	// Site identity used for canonical URLs, sitemap and structured data
	SiteURL  string `env:"OCMS_SITE_URL" envDefault:"http://localhost:8080"`
	SiteName string `env:"OCMS_SITE_NAME" envDefault:"oCMS"`

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"ocms:"`   // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"3600"`       // Page cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// HTTP surface
	AdminPerPage   int           `env:"OCMS_ADMIN_PER_PAGE" envDefault:"15"`
	PublicPerPage  int           `env:"OCMS_PUBLIC_PER_PAGE" envDefault:"12"`
	RequestTimeout time.Duration `env:"OCMS_REQUEST_TIMEOUT" envDefault:"30s"`

	// Public routes: per-client-IP requests per second (0 disables) and
	// Cache-Control max-age in seconds
	PublicRateLimit float64 `env:"OCMS_PUBLIC_RATE_LIMIT" envDefault:"10"`
	PublicRateBurst int     `env:"OCMS_PUBLIC_RATE_BURST" envDefault:"20"`
	PublicMaxAge    int     `env:"OCMS_PUBLIC_MAX_AGE" envDefault:"60"`

	// Comma-separated browser origins allowed by CORS; empty disables CORS
	CORSAllowedOrigins []string `env:"OCMS_CORS_ALLOWED_ORIGINS" envSeparator:","`
	MetricsEnabled     bool     `env:"OCMS_METRICS_ENABLED" envDefault:"true"`

	// Scheduler configuration
	SchedulerEnabled   bool `env:"OCMS_SCHEDULER_ENABLED" envDefault:"true"`
	EventRetentionDays int  `env:"OCMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"OCMS_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns the page cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// EventRetention returns how long event log entries are kept.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("OCMS_DB_PATH must not be empty"))
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("OCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if u, err := url.Parse(c.SiteURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("OCMS_SITE_URL must be an absolute http(s) URL, got %q", c.SiteURL))
	}
	if c.CacheTTL < 1 {
		errs = append(errs, fmt.Errorf("OCMS_CACHE_TTL must be positive, got %d", c.CacheTTL))
	}
	if c.CacheMaxSize < 1 {
		errs = append(errs, fmt.Errorf("OCMS_CACHE_MAX_SIZE must be positive, got %d", c.CacheMaxSize))
	}
	if c.AdminPerPage < 1 || c.AdminPerPage > MaxPerPage {
		errs = append(errs, fmt.Errorf("OCMS_ADMIN_PER_PAGE must be between 1 and %d, got %d", MaxPerPage, c.AdminPerPage))
	}
	if c.PublicPerPage < 1 || c.PublicPerPage > MaxPerPage {
		errs = append(errs, fmt.Errorf("OCMS_PUBLIC_PER_PAGE must be between 1 and %d, got %d", MaxPerPage, c.PublicPerPage))
	}
	if c.PublicRateLimit < 0 {
		errs = append(errs, fmt.Errorf("OCMS_PUBLIC_RATE_LIMIT must not be negative, got %g", c.PublicRateLimit))
	}
	if c.PublicRateLimit > 0 && c.PublicRateBurst < 1 {
		errs = append(errs, fmt.Errorf("OCMS_PUBLIC_RATE_BURST must be positive when rate limiting is on, got %d", c.PublicRateBurst))
	}
	if c.PublicMaxAge < 0 {
		errs = append(errs, fmt.Errorf("OCMS_PUBLIC_MAX_AGE must not be negative, got %d", c.PublicMaxAge))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("OCMS_REQUEST_TIMEOUT must not be negative, got %s", c.RequestTimeout))
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("OCMS_CORS_ALLOWED_ORIGINS entry %q must be an origin like https://example.com", origin))
		}
	}
	if c.EventRetentionDays < 1 {
		errs = append(errs, fmt.Errorf("OCMS_EVENT_RETENTION_DAYS must be positive, got %d", c.EventRetentionDays))
	}

	return errors.Join(errs...)
}
