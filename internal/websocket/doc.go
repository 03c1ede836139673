// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

/*
Package websocket broadcasts live preference-learning events to connected
frontend clients.

The package implements a hub-and-spoke pattern on top of gorilla/websocket:
a single Hub owns the client set and fans out typed messages, and every
Client runs two goroutines (readPump handles pings and connection health,
writePump delivers broadcasts with a write deadline).

Message Types:

  - learning_update: an interaction was recorded and a user's preference
    context changed (user, interaction type, experience, memory size)
  - matches_ready: a fresh ranked match set was generated for a user
  - ping / pong: connection keepalive initiated by the client

The Hub is supervised via RunWithContext, which closes all clients and
returns ctx.Err() on cancellation so a suture supervisor can restart it
cleanly. Broadcast helpers never block: when the broadcast channel is full
the message is dropped and counted rather than stalling the caller.

Usage:

	hub := websocket.NewHub()
	go hub.Run()

	// after recording an interaction
	hub.BroadcastLearningUpdate(userID, "swipe_right", expID, memoryEntries)

	// after generating matches
	hub.BroadcastMatchesReady(userID, len(predictions), false)

The HTTP upgrade endpoint lives in internal/api; this package only deals
with established connections.
*/
package websocket
