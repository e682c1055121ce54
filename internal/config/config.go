// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration loaded from config files and
// environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Thread Safety: Config is immutable after Load() and safe for concurrent
// read access from multiple goroutines.
type Config struct {
	Server        ServerConfig         `koanf:"server"`
	API           APIConfig            `koanf:"api"`
	Engine        EngineConfig         `koanf:"engine"`
	Features      FeaturesConfig       `koanf:"features"`
	Organizations []OrganizationConfig `koanf:"organizations"`
	Security      SecurityConfig       `koanf:"security"`
	Logging       LoggingConfig        `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// BaseURL is the externally reachable root of the deployment
	// (e.g. "https://faultline.example.com"). Notification links and
	// pagination Link headers are rendered against it.
	BaseURL string `koanf:"base_url"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// APIConfig holds pagination and response limits for the events API.
type APIConfig struct {
	DefaultPerPage int `koanf:"default_per_page"`
	MaxPerPage     int `koanf:"max_per_page"`
}

// EngineConfig configures the upstream events-engine transports. Baseline
// answers queries from raw event data; Enhanced answers the same query shape
// from pre-aggregated metrics.
type EngineConfig struct {
	BaselineURL string `koanf:"baseline_url"`
	EnhancedURL string `koanf:"enhanced_url"`

	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate (per second) allowed toward
	// each engine backend; RateBurst bounds short spikes.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Circuit breaker settings for the engine transports.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// FeaturesConfig is the static feature-flag source used when no external
// flag service is wired in. Keys are organization slugs, values are the flag
// names enabled for that organization. The "*" key applies to every
// organization.
type FeaturesConfig struct {
	Organizations map[string][]string `koanf:"organizations"`
}

// OrganizationConfig declares a tenant served by this deployment and the
// projects its events queries may be scoped to.
type OrganizationConfig struct {
	ID       int64           `koanf:"id"`
	Slug     string          `koanf:"slug"`
	Name     string          `koanf:"name"`
	Projects []ProjectConfig `koanf:"projects"`
}

// ProjectConfig declares one project inside an organization.
type ProjectConfig struct {
	ID   int64  `koanf:"id"`
	Slug string `koanf:"slug"`
	Name string `koanf:"name"`
}

// SecurityConfig holds authentication and rate limiting configuration.
type SecurityConfig struct {
	// JWTSecret verifies bearer tokens on API requests. Token-authenticated
	// requests get a fixed analytics referrer; an empty secret disables
	// bearer-token recognition entirely.
	JWTSecret string `koanf:"jwt_secret"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would misbehave at
// runtime rather than fail fast at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.base_url must be an absolute URL, got %q", c.Server.BaseURL)
		}
	}
	if c.API.DefaultPerPage < 1 {
		return fmt.Errorf("api.default_per_page must be positive, got %d", c.API.DefaultPerPage)
	}
	if c.API.MaxPerPage < c.API.DefaultPerPage {
		return fmt.Errorf("api.max_per_page (%d) must be >= api.default_per_page (%d)",
			c.API.MaxPerPage, c.API.DefaultPerPage)
	}
	for _, raw := range []string{c.Engine.BaselineURL, c.Engine.EnhancedURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("engine URL must be absolute, got %q", raw)
		}
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	seen := make(map[string]bool, len(c.Organizations))
	for _, org := range c.Organizations {
		if org.Slug == "" {
			return fmt.Errorf("organizations entries require a slug")
		}
		if seen[org.Slug] {
			return fmt.Errorf("duplicate organization slug %q", org.Slug)
		}
		seen[org.Slug] = true
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a recognized level", c.Logging.Level)
	}
	return nil
}
