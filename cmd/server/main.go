// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package main is the entry point for the MedinaMatch server.
//
// MedinaMatch learns traveler preferences from swipe-style interactions and
// matches them with Moroccan artisan experiences. The server wires together:
//
//  1. Configuration: layered loading from defaults, config.yaml, and
//     environment variables (koanf v2)
//  2. Context store: BadgerDB (or in-memory for ephemeral deployments)
//  3. Matching service: preference learning and match scoring
//  4. Experience catalog: static seed data or an upstream HTTP catalog
//     behind a circuit breaker
//  5. WebSocket hub: live learning_update and matches_ready events
//  6. HTTP API: Chi router with CORS, rate limiting, and Prometheus metrics
//
// All long-running components run under a suture supervision tree and
// restart with backoff on failure. SIGINT and SIGTERM trigger graceful
// shutdown: the HTTP server drains in-flight requests, the hub closes its
// clients, and the store is closed last.
//
// Example usage:
//
//	export HTTP_PORT=8480
//	export STORAGE_PATH=/data/medinamatch
//	export CORS_ORIGINS=https://app.medinamatch.example
//	./medinamatch
//
// With an upstream catalog:
//
//	export CATALOG_SOURCE=http
//	export CATALOG_URL=https://catalog.internal/experiences
//	./medinamatch
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/medinamatch/medinamatch/internal/api"
	"github.com/medinamatch/medinamatch/internal/catalog"
	"github.com/medinamatch/medinamatch/internal/config"
	"github.com/medinamatch/medinamatch/internal/kv"
	"github.com/medinamatch/medinamatch/internal/logging"
	"github.com/medinamatch/medinamatch/internal/matching"
	"github.com/medinamatch/medinamatch/internal/metrics"
	"github.com/medinamatch/medinamatch/internal/supervisor"
	"github.com/medinamatch/medinamatch/internal/supervisor/services"
	ws "github.com/medinamatch/medinamatch/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("storage_backend", cfg.Storage.Backend).
		Str("catalog_source", cfg.Catalog.Source).
		Str("environment", cfg.Server.Environment).
		Msg("Starting MedinaMatch")

	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	// Context store
	store, badgerStore, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open context store")
	}
	defer func() {
		if badgerStore != nil {
			if err := badgerStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing context store")
			}
		}
	}()
	logging.Info().Msg("Context store initialized")

	// Matching service
	svc := matching.NewService(store, cfg.Matching.EngineConfig(), logging.Logger())

	// Experience catalog
	provider := newCatalogProvider(cfg)

	// WebSocket hub (optional)
	var hub *ws.Hub
	if cfg.WebSocket.Enabled {
		hub = ws.NewHub()
	}

	// HTTP server
	handler := api.NewHandler(svc, provider, store, hub, cfg)
	mw := api.NewChiMiddlewareFromServer(cfg.Server.CORSOrigins, cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow)
	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Supervision tree; sutureslog needs slog, bridged from zerolog
	tree, err := supervisor.NewSupervisorTree(logging.Slogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if badgerStore != nil {
		tree.AddStorageService(services.NewBadgerGCService(badgerStore, cfg.Storage.GCInterval, cfg.Storage.GCDiscardRatio))
		logging.Info().Dur("interval", cfg.Storage.GCInterval).Msg("Badger GC service added")
	}
	if hub != nil {
		tree.AddMessagingService(services.NewWebSocketHubService(hub))
		logging.Info().Msg("WebSocket hub service added")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	go trackUptime(ctx)

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openStore opens the configured context store backend. The second return
// value is non-nil only for the Badger backend, which needs GC supervision
// and an explicit Close.
func openStore(cfg *config.Config) (kv.Store, *kv.BadgerStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logging.Warn().Msg("Using in-memory context store, learned preferences will not survive restarts")
		return kv.NewMemoryStore(), nil, nil
	default:
		badgerStore, err := kv.OpenBadger(kv.BadgerOptions{Path: cfg.Storage.Path})
		if err != nil {
			return nil, nil, err
		}
		return badgerStore, badgerStore, nil
	}
}

// newCatalogProvider builds the experience catalog for the configured source.
func newCatalogProvider(cfg *config.Config) catalog.Provider {
	if cfg.Catalog.Source == "http" {
		logging.Info().Str("url", cfg.Catalog.URL).Msg("Using upstream HTTP experience catalog")
		return catalog.NewHTTPProvider(cfg.Catalog, logging.Logger())
	}

	logging.Info().Msg("Using static experience catalog")
	return catalog.NewStaticProvider(nil)
}

// trackUptime updates the uptime gauge until shutdown.
func trackUptime(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
