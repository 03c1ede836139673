// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/medinamatch/medinamatch/internal/matching"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config file: optional YAML file (config.yaml)
//  3. Environment variables: override any setting
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Matching  MatchingConfig  `koanf:"matching"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8480)
//   - HTTP_TIMEOUT: request timeout (default: 30s)
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQS: requests per window per client (default: 100)
//   - RATE_LIMIT_WINDOW: rate limit window (default: 1m)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	Environment     string        `koanf:"environment"`
}

// StorageConfig selects and tunes the user-context store backend.
//
// Environment variables:
//   - STORAGE_BACKEND: "badger" or "memory" (default: badger)
//   - STORAGE_PATH: BadgerDB directory (default: /data/medinamatch)
//   - STORAGE_GC_INTERVAL: value-log GC interval (default: 10m)
//   - STORAGE_GC_DISCARD_RATIO: GC discard ratio (default: 0.5)
type StorageConfig struct {
	Backend        string        `koanf:"backend"`
	Path           string        `koanf:"path"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// MatchingConfig exposes the tunable subset of the engine configuration.
// Anything not listed here keeps the engine default.
type MatchingConfig struct {
	BaseRate         float64 `koanf:"base_rate"`
	MemoryMaxEntries int     `koanf:"memory_max_entries"`
	RetentionDays    float64 `koanf:"retention_days"`
	PreferenceWeight float64 `koanf:"preference_weight"`
	BehavioralWeight float64 `koanf:"behavioral_weight"`
	ContextualWeight float64 `koanf:"contextual_weight"`
	NoveltyWeight    float64 `koanf:"novelty_weight"`
	DefaultCount     int     `koanf:"default_count"`
	MaxCount         int     `koanf:"max_count"`
	MaxCandidates    int     `koanf:"max_candidates"`
}

// EngineConfig maps the tunable settings onto a full engine configuration.
func (m MatchingConfig) EngineConfig() *matching.Config {
	cfg := matching.DefaultConfig()
	cfg.Learning.BaseRate = m.BaseRate
	cfg.Memory.MaxEntries = m.MemoryMaxEntries
	cfg.Memory.RetentionDays = m.RetentionDays
	cfg.Scoring.PreferenceWeight = m.PreferenceWeight
	cfg.Scoring.BehavioralWeight = m.BehavioralWeight
	cfg.Scoring.ContextualWeight = m.ContextualWeight
	cfg.Scoring.NoveltyWeight = m.NoveltyWeight
	cfg.Limits.DefaultCount = m.DefaultCount
	cfg.Limits.MaxCount = m.MaxCount
	cfg.Limits.MaxCandidates = m.MaxCandidates
	return cfg
}

// CatalogConfig configures where candidate experiences come from.
//
// Environment variables:
//   - CATALOG_SOURCE: "static" or "http" (default: static)
//   - CATALOG_URL: experience catalog endpoint for the http source
//   - CATALOG_TIMEOUT: upstream request timeout (default: 10s)
//   - CATALOG_REQUESTS_PER_SECOND: client-side rate limit (default: 10)
//   - CATALOG_CACHE_TTL: how long a fetched catalog stays fresh (default: 5m)
type CatalogConfig struct {
	Source            string        `koanf:"source"`
	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	BreakerMaxFails   uint32        `koanf:"breaker_max_fails"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
}

// WebSocketConfig configures the live learning-update feed.
type WebSocketConfig struct {
	Enabled         bool          `koanf:"enabled"`
	ReadBufferSize  int           `koanf:"read_buffer_size"`
	WriteBufferSize int           `koanf:"write_buffer_size"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	PingInterval    time.Duration `koanf:"ping_interval"`
}

// LoggingConfig holds log output settings.
//
// Environment variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("server.rate_limit_reqs must be positive, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive, got %v", c.Server.RateLimitWindow)
	}

	switch c.Storage.Backend {
	case "badger":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the badger backend")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be badger or memory, got %q", c.Storage.Backend)
	}
	if c.Storage.GCDiscardRatio <= 0 || c.Storage.GCDiscardRatio >= 1 {
		return fmt.Errorf("storage.gc_discard_ratio must be in (0, 1), got %f", c.Storage.GCDiscardRatio)
	}

	switch c.Catalog.Source {
	case "static":
	case "http":
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.url is required for the http source")
		}
		if !strings.HasPrefix(c.Catalog.URL, "http://") && !strings.HasPrefix(c.Catalog.URL, "https://") {
			return fmt.Errorf("catalog.url must be an http(s) URL, got %q", c.Catalog.URL)
		}
		if c.Catalog.RequestsPerSecond <= 0 {
			return fmt.Errorf("catalog.requests_per_second must be positive, got %f", c.Catalog.RequestsPerSecond)
		}
	default:
		return fmt.Errorf("catalog.source must be static or http, got %q", c.Catalog.Source)
	}

	if c.WebSocket.Enabled {
		if c.WebSocket.WriteTimeout <= 0 {
			return fmt.Errorf("websocket.write_timeout must be positive, got %v", c.WebSocket.WriteTimeout)
		}
		if c.WebSocket.PingInterval <= 0 {
			return fmt.Errorf("websocket.ping_interval must be positive, got %v", c.WebSocket.PingInterval)
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	// The engine has its own validation for the mapped settings.
	if err := c.Matching.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	return nil
}
