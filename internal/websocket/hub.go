// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medinamatch/medinamatch/internal/logging"
	"github.com/medinamatch/medinamatch/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeLearningUpdate = "learning_update"
	MessageTypeMatchesReady   = "matches_ready"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub (blocks forever, no context support).
//
// Deprecated: Use RunWithContext for supervised operation.
func (h *Hub) Run() {
	for {
		// When Go's select has multiple ready channels it picks randomly.
		// Lifecycle events are drained first so client state is always
		// consistent before a broadcast is processed.
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
			// No lifecycle events pending, proceed to broadcast
		}

		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// RunWithContext starts the hub with context support for graceful shutdown.
// This method is designed for use with suture supervision.
//
// When the context is canceled all connected clients are closed and the
// method returns ctx.Err(), allowing the supervisor to restart the hub
// without leaving orphaned connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Shutdown takes priority over everything else.
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Lifecycle events before broadcasts, see Run.
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSConnectionsActive.Dec()
		logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is not logged as an error because cancellation is
// the expected shutdown path and would confuse operators watching error logs.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients sends a message to all connected clients. Clients are
// sorted by ID so the delivery order is reproducible; with map iteration the
// order would differ between runs and make connection tests flaky.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	// Can't modify the map during iteration
	var toRemove []*Client

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.RecordWSMessage(message.Type)
		default:
			// Channel full or closed, mark for removal
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnectionsActive.Dec()
		metrics.WSMessagesDropped.Inc()
	}
}

// closeAllClients closes all connected clients in ID order. Called during
// shutdown to ensure clean termination.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnectionsActive.Dec()
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// LearningUpdateData represents data sent with learning_update messages.
type LearningUpdateData struct {
	Timestamp       string `json:"timestamp"`
	UserID          string `json:"user_id"`
	InteractionType string `json:"interaction_type"`
	ExperienceID    string `json:"experience_id,omitempty"`
	MemoryEntries   int    `json:"memory_entries"`
}

// BroadcastLearningUpdate notifies all clients that an interaction was
// recorded and the user's preference context has been updated.
func (h *Hub) BroadcastLearningUpdate(userID, interactionType, experienceID string, memoryEntries int) {
	data := LearningUpdateData{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		UserID:          userID,
		InteractionType: interactionType,
		ExperienceID:    experienceID,
		MemoryEntries:   memoryEntries,
	}

	message := Message{
		Type: MessageTypeLearningUpdate,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Msg("broadcast channel full, dropping learning_update message")
	}
}

// MatchesReadyData represents data sent with matches_ready messages.
type MatchesReadyData struct {
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Count     int    `json:"count"`
	Fallback  bool   `json:"fallback"`
}

// BroadcastMatchesReady notifies all clients that a fresh set of ranked
// matches was generated for a user.
func (h *Hub) BroadcastMatchesReady(userID string, count int, fallback bool) {
	data := MatchesReadyData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		UserID:    userID,
		Count:     count,
		Fallback:  fallback,
	}

	message := Message{
		Type: MessageTypeMatchesReady,
		Data: data,
	}

	select {
	case h.broadcast <- message:
		logging.Info().Int("clients", h.GetClientCount()).Str("user_id", userID).Int("count", count).Msg("broadcast matches_ready")
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Msg("broadcast channel full, dropping matches_ready message")
	}
}

// BroadcastJSON sends an arbitrary typed message to all connected clients
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type: messageType,
		Data: data,
	}

	select {
	case h.broadcast <- message:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping JSON message")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
