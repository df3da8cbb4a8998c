package board

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// client wraps a connection with its own write lock; gorilla connections
// allow one concurrent writer.
type client struct {
	conn   *websocket.Conn
	userID int64
	mu     sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Hub tracks every open board connection. Several staff members may watch
// the board at once, including the same user from two devices.
type Hub struct {
	clients map[*client]struct{}
	mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) register(userID int64, conn *websocket.Conn) *client {
	c := &client{conn: conn, userID: userID}
	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[c]; ok {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// Broadcast sends message to every connection and drops the ones that fail.
// It returns the number of successful deliveries.
func (h *Hub) Broadcast(message any) int {
	h.mutex.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mutex.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.writeJSON(message); err != nil {
			h.unregister(c)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}
