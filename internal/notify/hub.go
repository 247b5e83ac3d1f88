// Package notify pushes booking events to connected users over websockets.
package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteWait = 10 * time.Second

// conn serialises writes; gorilla connections allow one concurrent writer.
// Every write is bounded by writeWait so a client that stops reading fails
// the write instead of blocking the sender.
type conn struct {
	ws        *websocket.Conn
	mu        sync.Mutex
	writeWait time.Duration
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) writeControl(messageType int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(messageType, nil)
}

// Hub keeps the latest connection of every user.
type Hub struct {
	connections map[string]*conn
	mutex       sync.RWMutex
	writeWait   time.Duration
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*conn),
		writeWait:   defaultWriteWait,
	}
}

func (h *Hub) register(userID string, ws *websocket.Conn) *conn {
	c := &conn{ws: ws, writeWait: h.writeWait}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists {
		_ = old.ws.Close()
	}
	h.connections[userID] = c
	return c
}

// unregister drops c only if it is still the user's current connection.
func (h *Hub) unregister(userID string, c *conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if cur, exists := h.connections[userID]; exists && cur == c {
		delete(h.connections, userID)
	}
	_ = c.ws.Close()
}

func (h *Hub) SendToUser(userID string, message any) bool {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists {
		return false
	}

	if err := c.writeJSON(message); err != nil {
		h.unregister(userID, c)
		return false
	}
	return true
}

func (h *Hub) IsOnline(userID string) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		_ = c.ws.Close()
		delete(h.connections, userID)
	}
}
