// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/medinamatch/medinamatch/internal/logging"
	ws "github.com/medinamatch/medinamatch/internal/websocket"
)

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout guarding against slow-client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	readBuf, writeBuf := 1024, 4096
	if h.config != nil {
		if h.config.WebSocket.ReadBufferSize > 0 {
			readBuf = h.config.WebSocket.ReadBufferSize
		}
		if h.config.WebSocket.WriteBufferSize > 0 {
			writeBuf = h.config.WebSocket.WriteBufferSize
		}
	}

	return websocket.Upgrader{
		ReadBufferSize:   readBuf,
		WriteBufferSize:  writeBuf,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Browser WebSockets always include an Origin header; an empty Origin is
// rejected because allowing it would bypass CORS entirely. Non-browser
// clients are expected to set the header explicitly.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// Nil config fails open for tests and development
	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Server.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket handles GET /api/v1/ws, upgrading the connection and attaching
// it to the broadcast hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	var client *ws.Client
	if h.config != nil {
		client = ws.NewClientWithTiming(h.wsHub, conn, h.config.WebSocket.WriteTimeout, h.config.WebSocket.PingInterval)
	} else {
		client = ws.NewClient(h.wsHub, conn)
	}
	h.wsHub.Register <- client
	client.Start()
}
