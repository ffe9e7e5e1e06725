// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/livepoll/server/events"
)

// Hub is the server-side connection registry. Each accepted websocket gets
// its own bus subscription; pushing an event to a client that cannot keep up
// or whose transport died unregisters it, and never blocks the write path
// that published the event.
type Hub struct {
	bus      *events.Bus
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(bus *events.Bus) *Hub {
	return &Hub{
		bus: bus,
		upgrader: websocket.Upgrader{
			// Origin enforcement happens at the proxy in front of us
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP handles GET /rawws: upgrade, register, pump.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sub := h.bus.Subscribe()
	h.register(conn)
	slog.Info("websocket connected", "remote", r.RemoteAddr)

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// ConnCount reports the number of live connections.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every live connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// writePump serializes bus events onto the socket. It ends when the
// subscription is closed (slow subscriber dropped by the bus) or the write
// fails (dead transport); either way the connection is unregistered.
func (h *Hub) writePump(conn *websocket.Conn, sub *events.Subscription) {
	defer h.unregister(conn)
	defer sub.Close()

	for ev := range sub.Events() {
		if err := conn.WriteJSON(ev); err != nil {
			slog.Info("websocket write failed, dropping connection", "error", err)
			return
		}
	}
}

// readPump drains incoming frames so the connection's close state is
// observed. Clients may send text frames (the web frontend says hello on
// open); they are logged and otherwise ignored.
func (h *Hub) readPump(conn *websocket.Conn, sub *events.Subscription) {
	defer sub.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt == websocket.TextMessage {
			slog.Debug("client frame", "msg", string(msg))
		}
	}
}
