// MedinaMatch - Adaptive Artisan Experience Matching
// Copyright 2026 MedinaMatch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medinamatch/medinamatch

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/medinamatch/medinamatch/internal/logging"
)

const (
	defaultWriteWait  = 10 * time.Second
	pongWait          = 60 * time.Second
	defaultPingPeriod = (pongWait * 9) / 10
	maxMessageSize    = 64 * 1024 // 64 KB, interaction payloads are small
)

// clientIDCounter generates unique, monotonically increasing IDs for clients
// so broadcast order is stable regardless of map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub
type Client struct {
	id         uint64
	hub        *Hub
	conn       *websocket.Conn
	send       chan Message
	writeWait  time.Duration
	pingPeriod time.Duration
}

// NewClient creates a new Client with default timing
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return NewClientWithTiming(hub, conn, defaultWriteWait, defaultPingPeriod)
}

// NewClientWithTiming creates a new Client with explicit write timeout and
// ping interval, typically sourced from server configuration. Non-positive
// values fall back to the defaults; pingPeriod must stay below pongWait or
// the connection would be declared dead between pings.
func NewClientWithTiming(hub *Hub, conn *websocket.Conn, writeWait, pingPeriod time.Duration) *Client {
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = defaultPingPeriod
	}
	return &Client{
		id:         clientIDCounter.Add(1),
		hub:        hub,
		conn:       conn,
		send:       make(chan Message, 256),
		writeWait:  writeWait,
		pingPeriod: pingPeriod,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		if msg.Type == MessageTypePing {
			pong := Message{
				Type: MessageTypePong,
				Data: nil,
			}
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
