// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

// Package services provides suture.Service wrappers for the components that
// make up a running MedinaMatch process: the HTTP server, the WebSocket hub,
// and the Badger value-log GC loop. Each wrapper adapts a component's own
// lifecycle to suture's context-aware Serve pattern through a narrow
// interface, so the wrappers stay testable with mocks and free of package
// dependencies on the components they supervise.
package services
