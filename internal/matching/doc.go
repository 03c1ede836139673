// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package matching implements the adaptive preference engine: a persistent
// per-user learned context, an online learner that folds swipe and booking
// events into bounded affinity vectors, a contextual scorer that blends four
// weighted signals into ranked match predictions, and an exploratory fallback
// ranking for users with no learned state.
//
// The package is deliberately self-contained: it depends only on the
// key-value abstraction in internal/kv and on structured logging. Transport,
// validation and catalog concerns live in their own packages.
package matching
