// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package matching

import "errors"

// ErrContextNotFound is returned when RecordInteraction is called for a user
// whose context was never initialized. This is a caller programming error;
// storage failures never surface as this error.
var ErrContextNotFound = errors.New("matching: user context not found")

// ErrInvalidInteraction is returned when an interaction fails validation
// (unknown type, missing user ID).
var ErrInvalidInteraction = errors.New("matching: invalid interaction")
