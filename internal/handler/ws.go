package handler

import (
	"sync"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection. A user may hold several.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu    sync.Mutex
	rooms map[string]bool
}

func (c *Client) join(room string)  { c.mu.Lock(); c.rooms[room] = true; c.mu.Unlock() }
func (c *Client) leave(room string) { c.mu.Lock(); delete(c.rooms, room); c.mu.Unlock() }

func (c *Client) inRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[room]
}

// Hub tracks connected clients and their rooms. Sensor broadcasts go to
// everyone; chat messages go to a room.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{clients: make(map[*Client]bool), logger: logger}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Info("websocket connected", zap.String("user_id", c.UserID))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
	h.logger.Info("websocket disconnected", zap.String("user_id", c.UserID))
}

func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- message:
		default:
			// Slow consumer; drop the frame rather than block the hub.
		}
	}
}

func (h *Hub) BroadcastRoom(room string, message []byte) {
	h.broadcastRoom(room, message, nil)
}

// BroadcastRoomExcept skips the sender, for events like typing indicators.
func (h *Hub) BroadcastRoomExcept(room string, message []byte, except *Client) {
	h.broadcastRoom(room, message, except)
}

func (h *Hub) broadcastRoom(room string, message []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c == except || !c.inRoom(room) {
			continue
		}
		select {
		case c.Send <- message:
		default:
		}
	}
}
