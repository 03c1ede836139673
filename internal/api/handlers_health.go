// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/medinamatch/medinamatch/internal/kv"
)

// Version is the application version, set at build time via ldflags.
var Version = "dev"

// HealthStatus is the payload for GET /api/v1/health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	WebSocket      bool    `json:"websocket"`
	Uptime         float64 `json:"uptime"`
}

// Health handles health check requests, reporting store connectivity and
// process uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	storeConnected := h.storeReachable(r)

	status := "healthy"
	if !storeConnected {
		status = "degraded"
	}

	health := HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: storeConnected,
		WebSocket:      h.wsHub != nil,
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   health,
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only if the context store is reachable, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeReachable(r) {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Context store is not reachable", nil)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"ready": true,
		},
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
	})
}

// storeReachable probes the context store with a read of a key that is not
// expected to exist. ErrNotFound still proves the backend answered.
func (h *Handler) storeReachable(r *http.Request) bool {
	if h.store == nil {
		return false
	}

	_, err := h.store.Get(r.Context(), "health:probe")
	return err == nil || errors.Is(err, kv.ErrNotFound)
}
