// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docgen

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// eventPingInterval keeps intermediaries from closing idle streams.
	eventPingInterval = 30 * time.Second

	// eventWriteTimeout bounds each frame write.
	eventWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// HandleEvents handles GET /v1/docs/events.
//
// Description:
//
//	Upgrades the connection to a websocket and streams DocEvent JSON
//	frames as files are documented or removed, until the client
//	disconnects or the service shuts down. The stream is fire-and-forget:
//	a client that cannot keep up misses events rather than slowing
//	generation down.
func (h *Handlers) HandleEvents(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	wsClients.Inc()
	defer wsClients.Dec()

	hub := h.svc.Events()
	events := hub.Subscribe()
	defer hub.Unsubscribe(events)

	slog.Info("Event subscriber connected", "remote", ws.RemoteAddr().String())

	// The client never sends frames we care about; the read loop exists
	// to notice the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(eventPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			slog.Info("Event subscriber disconnected")
			return

		case <-c.Request.Context().Done():
			return

		case ev, ok := <-events:
			if !ok {
				// Hub closed: service is shutting down.
				return
			}
			ws.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := ws.WriteJSON(ev); err != nil {
				slog.Warn("Failed to write doc event", "error", err)
				return
			}

		case <-pingTicker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventWriteTimeout)); err != nil {
				return
			}
		}
	}
}
