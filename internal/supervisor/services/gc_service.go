// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package services

import (
	"context"
	"time"
)

// GCStore interface matches *kv.BadgerStore's GC loop, avoiding a direct
// dependency on the kv package.
type GCStore interface {
	StartGCLoop(ctx context.Context, interval time.Duration, discardRatio float64)
}

// BadgerGCService runs Badger value-log garbage collection on an interval
// as a supervised service.
type BadgerGCService struct {
	store        GCStore
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewBadgerGCService creates a new GC service wrapper. Non-positive
// parameters fall back to 10 minutes and a 0.5 discard ratio.
func NewBadgerGCService(store GCStore, interval time.Duration, discardRatio float64) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 || discardRatio > 1 {
		discardRatio = 0.5
	}
	return &BadgerGCService{
		store:        store,
		interval:     interval,
		discardRatio: discardRatio,
		name:         "badger-gc",
	}
}

// Serve implements suture.Service. StartGCLoop blocks until the context is
// canceled; ctx.Err() signals a clean stop to the supervisor.
func (g *BadgerGCService) Serve(ctx context.Context) error {
	g.store.StartGCLoop(ctx, g.interval, g.discardRatio)
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (g *BadgerGCService) String() string {
	return g.name
}
