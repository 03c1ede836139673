// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store using BadgerDB for durable storage.
// Suitable for production use with persistence across restarts.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the on-disk directory for the database.
	// Ignored when InMemory is true.
	Path string

	// InMemory runs Badger without disk persistence. Useful for tests and
	// deployments where contexts are intentionally ephemeral.
	InMemory bool
}

// OpenBadger opens a BadgerDB-backed store.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("badger store: path required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open Badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the value for key, or ErrNotFound.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value under key.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %q: %w", key, err)
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC runs one round of Badger value-log garbage collection.
// Returns badger.ErrNoRewrite when nothing needed rewriting.
func (s *BadgerStore) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// StartGCLoop runs value-log GC on an interval until ctx is canceled.
// Intended to be wrapped as a supervised service.
func (s *BadgerStore) StartGCLoop(ctx context.Context, interval time.Duration, discardRatio float64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// ErrNoRewrite is the common idle case; all GC errors are
			// non-fatal to the store.
			_ = s.RunGC(discardRatio)
		}
	}
}
