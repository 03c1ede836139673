// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

/*
Package api exposes the matching engine over HTTP using the Chi router.

Endpoints:

	POST /api/v1/context/init             create or reset a user context
	POST /api/v1/interactions             record a learning interaction
	GET  /api/v1/experiences              browse the candidate catalog
	GET  /api/v1/matches/{userID}         ranked match predictions
	GET  /api/v1/matches/{userID}/context learned-context summary
	GET  /api/v1/ws                       WebSocket upgrade for live updates
	GET  /api/v1/health[/live|/ready]     health and probe endpoints
	GET  /metrics                         Prometheus scrape endpoint

All endpoints respond with the APIResponse envelope: a status string, the
payload under data, metadata with the server timestamp and query time, and
a structured error with a machine-readable code on failure.

The middleware stack is built from the Chi ecosystem: go-chi/cors for CORS,
go-chi/httprate for per-IP rate limiting (a permissive tier for health
probes, the configured tier for the API), chi's RealIP and Recoverer, a
request-ID middleware integrated with the logging package, and a Prometheus
middleware recording request counts and latency per route pattern.

Request payloads are validated with go-playground/validator, including the
custom interaction_type rule shared with the matching package.
*/
package api
