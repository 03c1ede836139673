// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

/*
Package supervisor builds the suture/v4 supervision tree for MedinaMatch.

The tree has three child layers under one root:

	medinamatch
	├── storage-layer     Badger value-log GC
	├── messaging-layer   WebSocket hub
	└── api-layer         HTTP server

Supervised services restart automatically on failure with exponential
backoff; the layering isolates failures so a crashing hub never takes the
HTTP server down with it. Supervisor events are logged through sutureslog,
bridged onto the application's zerolog output via logging.Slogger().

Service wrappers for concrete components live in the services subpackage.
*/
package supervisor
