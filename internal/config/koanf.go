// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/medinamatch/config.yaml",
	"/etc/medinamatch/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			Environment:     "development",
		},
		Storage: StorageConfig{
			Backend:        "badger",
			Path:           "/data/medinamatch",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Matching: MatchingConfig{
			BaseRate:         0.1,
			MemoryMaxEntries: 50,
			RetentionDays:    30,
			PreferenceWeight: 0.4,
			BehavioralWeight: 0.3,
			ContextualWeight: 0.2,
			NoveltyWeight:    0.1,
			DefaultCount:     10,
			MaxCount:         100,
			MaxCandidates:    500,
		},
		Catalog: CatalogConfig{
			Source:            "static",
			URL:               "",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			CacheTTL:          5 * time.Minute,
			BreakerMaxFails:   5,
			BreakerTimeout:    30 * time.Second,
		},
		WebSocket: WebSocketConfig{
			Enabled:         true,
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			WriteTimeout:    10 * time.Second,
			PingInterval:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources with Koanf v2:
// defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first readable config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings; the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - STORAGE_PATH -> storage.path
//   - MATCHING_BASE_RATE -> matching.base_rate
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_timeout":      "server.timeout",
		"shutdown_timeout":  "server.shutdown_timeout",
		"cors_origins":      "server.cors_origins",
		"rate_limit_reqs":   "server.rate_limit_reqs",
		"rate_limit_window": "server.rate_limit_window",
		"environment":       "server.environment",

		"storage_backend":          "storage.backend",
		"storage_path":             "storage.path",
		"storage_gc_interval":      "storage.gc_interval",
		"storage_gc_discard_ratio": "storage.gc_discard_ratio",

		"catalog_source":              "catalog.source",
		"catalog_url":                 "catalog.url",
		"catalog_timeout":             "catalog.timeout",
		"catalog_requests_per_second": "catalog.requests_per_second",
		"catalog_burst":               "catalog.burst",
		"catalog_cache_ttl":           "catalog.cache_ttl",
		"catalog_breaker_max_fails":   "catalog.breaker_max_fails",
		"catalog_breaker_timeout":     "catalog.breaker_timeout",

		"websocket_enabled":       "websocket.enabled",
		"websocket_write_timeout": "websocket.write_timeout",
		"websocket_ping_interval": "websocket.ping_interval",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// MATCHING_* variables map structurally: MATCHING_BASE_RATE ->
	// matching.base_rate.
	if strings.HasPrefix(key, "matching_") {
		return "matching." + strings.TrimPrefix(key, "matching_")
	}

	// Unknown variables are dropped rather than polluting the tree.
	return ""
}
