// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package config loads and validates application configuration with Koanf v2.
//
// Sources are layered: built-in defaults, then an optional YAML config file,
// then environment variables. Environment always wins.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("failed to load config:", err)
//	}
//
// The matching section maps onto the engine configuration via
// MatchingConfig.EngineConfig; all other engine knobs keep their defaults.
package config
