// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockGCStore is a test double for the GCStore interface.
type mockGCStore struct {
	loopCount        atomic.Int32
	seenInterval     time.Duration
	seenDiscardRatio float64
}

func (m *mockGCStore) StartGCLoop(ctx context.Context, interval time.Duration, discardRatio float64) {
	m.loopCount.Add(1)
	m.seenInterval = interval
	m.seenDiscardRatio = discardRatio
	<-ctx.Done()
}

func TestBadgerGCService_Interface(t *testing.T) {
	var _ suture.Service = (*BadgerGCService)(nil)
}

func TestNewBadgerGCService(t *testing.T) {
	svc := NewBadgerGCService(&mockGCStore{}, 5*time.Minute, 0.7)

	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", svc.interval)
	}
	if svc.discardRatio != 0.7 {
		t.Errorf("discardRatio = %v, want 0.7", svc.discardRatio)
	}
	if svc.String() != "badger-gc" {
		t.Errorf("expected name 'badger-gc', got %q", svc.String())
	}
}

func TestNewBadgerGCService_Defaults(t *testing.T) {
	tests := []struct {
		name         string
		interval     time.Duration
		discardRatio float64
		wantInterval time.Duration
		wantRatio    float64
	}{
		{"zero values", 0, 0, 10 * time.Minute, 0.5},
		{"negative interval", -time.Minute, 0.7, 10 * time.Minute, 0.7},
		{"ratio above one", time.Minute, 1.5, time.Minute, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBadgerGCService(&mockGCStore{}, tt.interval, tt.discardRatio)
			if svc.interval != tt.wantInterval {
				t.Errorf("interval = %v, want %v", svc.interval, tt.wantInterval)
			}
			if svc.discardRatio != tt.wantRatio {
				t.Errorf("discardRatio = %v, want %v", svc.discardRatio, tt.wantRatio)
			}
		})
	}
}

func TestBadgerGCService_RunsUntilCanceled(t *testing.T) {
	store := &mockGCStore{}
	svc := NewBadgerGCService(store, time.Minute, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if store.loopCount.Load() != 1 {
		t.Errorf("StartGCLoop called %d times, want 1", store.loopCount.Load())
	}
	if store.seenInterval != time.Minute {
		t.Errorf("loop interval = %v, want 1m", store.seenInterval)
	}
	if store.seenDiscardRatio != 0.5 {
		t.Errorf("loop discard ratio = %v, want 0.5", store.seenDiscardRatio)
	}
}
