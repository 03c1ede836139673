// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the HTTP routing tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router around the given handler. A nil middleware
// factory falls back to secure defaults (no CORS origins, IP rate limiting).
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
	}
}

// Setup configures all HTTP routes using the Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS must be
	// global to handle OPTIONS preflight.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints get a permissive rate limit so monitoring can probe
	// frequently without tripping the API limiter.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Core API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Post("/context/init", router.handler.InitContext)
		r.Post("/interactions", router.handler.RecordInteraction)
		r.Get("/experiences", router.handler.Catalog)
		r.Get("/matches/{userID}", router.handler.Matches)
		r.Get("/matches/{userID}/context", router.handler.MatchContext)
		r.Get("/ws", router.handler.WebSocket)
	})

	// Prometheus scrape endpoint, outside the API rate limiter
	// Kubernetes-style alias for the liveness probe.
	r.Get("/healthz", router.handler.HealthLive)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
