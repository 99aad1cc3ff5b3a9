package netio

import (
	"fmt"
	"sync"
)

// Hub implements game.Sink over the live connections of one session: it
// maps a UID to the Conn currently representing that player and fans
// SendTo/Broadcast out onto their outbound queues. internal/game never
// imports this package — Hub satisfies game.Sink structurally, keeping
// packet-handling and session layers acyclic.
type Hub struct {
	mu    sync.Mutex
	conns map[byte]*Conn
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[byte]*Conn)}
}

// Bind associates uid with conn, replacing any previous binding (used both
// on first admission and on a reconnect-proxy rebind).
func (h *Hub) Bind(uid byte, conn *Conn) {
	h.mu.Lock()
	h.conns[uid] = conn
	h.mu.Unlock()
}

// Unbind removes uid's connection, if any.
func (h *Hub) Unbind(uid byte) {
	h.mu.Lock()
	delete(h.conns, uid)
	h.mu.Unlock()
}

// SendTo enqueues frame on uid's connection.
func (h *Hub) SendTo(uid byte, frame []byte) error {
	h.mu.Lock()
	conn, ok := h.conns[uid]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("netio: no connection bound for uid %d", uid)
	}
	conn.WriteRaw(frame)
	return nil
}

// Broadcast enqueues frame on every bound connection except exceptUID.
func (h *Hub) Broadcast(frame []byte, exceptUID byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, conn := range h.conns {
		if uid == exceptUID {
			continue
		}
		conn.WriteRaw(frame)
	}
}
