// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/medinamatch/medinamatch/internal/config"
	"github.com/medinamatch/medinamatch/internal/matching"
	"github.com/medinamatch/medinamatch/internal/metrics"
)

// HTTPProvider fetches the experience catalog from an upstream service.
//
// Upstream calls are rate limited client-side and wrapped in a circuit
// breaker. Successful fetches are cached for the configured TTL; while the
// upstream is failing or the breaker is open, the last good snapshot keeps
// being served until it expires.
type HTTPProvider struct {
	url     string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]matching.Experience]
	limiter *rate.Limiter
	ttl     time.Duration
	logger  zerolog.Logger

	mu        sync.RWMutex
	cached    []matching.Experience
	fetchedAt time.Time
}

// NewHTTPProvider creates a provider for the configured upstream catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPProvider(cfg config.CatalogConfig, logger zerolog.Logger) *HTTPProvider {
	log := logger.With().Str("component", "catalog").Logger()

	cb := gobreaker.NewCircuitBreaker[[]matching.Experience](gobreaker.Settings{
		Name:        "catalog-upstream",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("catalog breaker state change")
		},
	})

	return &HTTPProvider{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		ttl:     cfg.CacheTTL,
		logger:  log,
	}
}

// Experiences returns the current candidate set, serving the cached snapshot
// while it is fresh. Returns ErrUnavailable only when the upstream fails and
// no snapshot exists at all.
func (p *HTTPProvider) Experiences(ctx context.Context) ([]matching.Experience, error) {
	if cached, ok := p.freshSnapshot(); ok {
		return cached, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return p.staleOrError(err)
	}

	start := time.Now()
	experiences, err := p.cb.Execute(func() ([]matching.Experience, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		metrics.RecordCatalogFetch("http", outcome, time.Since(start))
		p.logger.Warn().Err(err).Msg("catalog fetch failed")
		return p.staleOrError(err)
	}
	metrics.RecordCatalogFetch("http", "ok", time.Since(start))

	p.mu.Lock()
	p.cached = experiences
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	return p.snapshot(experiences), nil
}

// fetch performs one upstream request.
func (p *HTTPProvider) fetch(ctx context.Context) ([]matching.Experience, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Drain for connection reuse.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("catalog upstream returned %d", resp.StatusCode)
	}

	var experiences []matching.Experience
	if err := json.NewDecoder(resp.Body).Decode(&experiences); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return experiences, nil
}

// freshSnapshot returns the cached catalog if it is within the TTL.
func (p *HTTPProvider) freshSnapshot() ([]matching.Experience, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cached == nil || time.Since(p.fetchedAt) > p.ttl {
		return nil, false
	}
	return p.snapshot(p.cached), true
}

// staleOrError serves an expired snapshot in preference to failing outright.
func (p *HTTPProvider) staleOrError(err error) ([]matching.Experience, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cached != nil {
		p.logger.Debug().Msg("serving stale catalog snapshot")
		return p.snapshot(p.cached), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// snapshot copies the slice so callers cannot mutate the cache.
func (p *HTTPProvider) snapshot(experiences []matching.Experience) []matching.Experience {
	out := make([]matching.Experience, len(experiences))
	copy(out, experiences)
	return out
}
