// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package cache provides a generic in-process LRU cache with TTL.
//
// The matching layer uses it as a read-through cache for serialized user
// contexts, keeping hot users off the persistent store on the request path.
package cache
