package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/middleware"
	"civic-portal/internal/repository"
	"civic-portal/internal/response"
	"civic-portal/internal/sub"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin websocket clients are expected; auth happens on the token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatHandler owns the websocket endpoint and chat history. Outbound chat
// messages go through redis so every portal instance fans them out.
type ChatHandler struct {
	hub    *Hub
	repo   repository.ChatRepo
	users  repository.UsersRepo
	rdb    *redis.Client
	logger *zap.Logger
}

func NewChatHandler(hub *Hub, repo repository.ChatRepo, users repository.UsersRepo, rdb *redis.Client, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{hub: hub, repo: repo, users: users, rdb: rdb, logger: logger}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	room := strings.TrimSpace(r.URL.Query().Get("room"))
	if room == "" {
		response.Error(w, http.StatusBadRequest, "room is required")
		return
	}

	messages, err := h.repo.History(r.Context(), room)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// ServeWS upgrades an authenticated request to a websocket connection.
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		rooms:  make(map[string]bool),
	}
	h.hub.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// clientEvent is the inbound frame format. Type is one of joinRoom,
// leaveRoom, sendMessage, typing.
type clientEvent struct {
	Type string            `json:"type"`
	Room string            `json:"room"`
	Text string            `json:"text,omitempty"`
	To   *string           `json:"to,omitempty"`
	Meta map[string]string `json:"meta,omitempty"`
}

func (h *ChatHandler) readPump(c *Client) {
	defer func() {
		h.hub.unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			h.logger.Debug("dropping malformed client frame", zap.String("user_id", c.UserID))
			continue
		}
		h.handleEvent(c, ev)
	}
}

func (h *ChatHandler) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *ChatHandler) handleEvent(c *Client, ev clientEvent) {
	if ev.Room == "" {
		return
	}

	switch ev.Type {
	case "joinRoom":
		c.join(ev.Room)
	case "leaveRoom":
		c.leave(ev.Room)
	case "sendMessage":
		h.sendMessage(c, ev)
	case "typing":
		// Typing indicators are transient; no persistence, no redis hop.
		out, err := json.Marshal(map[string]interface{}{
			"type": "typing",
			"data": map[string]string{"room": ev.Room, "from": c.UserID},
		})
		if err != nil {
			return
		}
		h.hub.BroadcastRoomExcept(ev.Room, out, c)
	}
}

func (h *ChatHandler) sendMessage(c *Client, ev clientEvent) {
	if strings.TrimSpace(ev.Text) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := &domain.ChatMessage{
		Room: ev.Room,
		From: c.UserID,
		To:   ev.To,
		Text: ev.Text,
		Meta: ev.Meta,
	}
	if err := h.repo.Insert(ctx, msg); err != nil {
		h.logger.Error("chat message not persisted", zap.Error(err))
		return
	}
	if sender, err := h.users.GetByID(ctx, c.UserID); err == nil {
		msg.FromUser = &domain.UserRef{ID: sender.ID, Name: sender.Name, Email: sender.Email}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	event, err := json.Marshal(sub.ChatEvent{Room: ev.Room, Message: payload})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(ctx, sub.ChatEventsChannel, event).Err(); err != nil {
		h.logger.Warn("chat event publish failed", zap.Error(err))
	}
}
