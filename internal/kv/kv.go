// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package kv provides the narrow key-value persistence boundary used by the
// matching engine. The engine only depends on the Store interface; callers
// choose a BadgerDB-backed store for durable deployments or an in-memory
// store when no persistent backing exists.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the persistence boundary for user contexts. Implementations store
// opaque byte values; callers own serialization.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any existing value
	// (last write wins; the boundary has no versioning).
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
