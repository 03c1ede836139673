// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package metrics provides Prometheus instrumentation for the HTTP API,
// the learning pipeline, match generation, catalog fetches, and the
// WebSocket feed. All metrics are registered with promauto at init and
// exposed via the /metrics endpoint.
//
// The matching engine itself stays dependency-free; counters are recorded
// at the transport and catalog layers.
package metrics
