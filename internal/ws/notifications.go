package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/middleware"
	"github.com/windoze95/forkful-api/internal/models"
	"go.uber.org/zap"
)

// WebSocket message types for the notification protocol.
const (
	MsgTypeConnected    = "connected"    // Connection confirmed
	MsgTypeNotification = "notification" // Server push of a new notification
	MsgTypePing         = "ping"         // Application-level keepalive from the client
	MsgTypePong         = "pong"
	MsgTypeError        = "error"
)

// WSMessage is the envelope for all messages sent over the notification socket.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConnectedPayload confirms a successful connection.
type ConnectedPayload struct {
	UserID uint `json:"userId"`
}

// NotificationPayload is the pushed form of a models.Notification.
type NotificationPayload struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	RecipeID  uint      `json:"recipeId"`
	Count     int       `json:"count"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorPayload carries an error message to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NotificationHandler upgrades authenticated requests to notification sockets.
type NotificationHandler struct {
	Hub       *Hub
	JwtSecret string
	Origins   []string
	upgrader  websocket.Upgrader
}

// NewNotificationHandler returns a new NotificationHandler. Origins lists the
// browser origins allowed to connect in addition to localhost.
func NewNotificationHandler(hub *Hub, jwtSecret string, origins []string) *NotificationHandler {
	h := &NotificationHandler{
		Hub:       hub,
		JwtSecret: jwtSecret,
		Origins:   origins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

func (h *NotificationHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Native clients send no Origin header.
	if origin == "" {
		return true
	}
	if slices.Contains(h.Origins, origin) {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
}

// HandleNotifications upgrades the request to a WebSocket connection that
// receives the caller's notifications. Authentication is done via a "token"
// query parameter because browsers cannot set headers on WebSocket requests.
func (h *NotificationHandler) HandleNotifications(c *gin.Context) {
	log := logger.FromContext(c)

	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	userID, err := middleware.ParseToken(h.JwtSecret, tokenString, middleware.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	client := &Client{
		Hub:    h.Hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		RoomID: UserRoom(userID),
		UserID: userID,
	}
	h.Hub.Register <- client

	client.Send <- envelope(MsgTypeConnected, ConnectedPayload{UserID: userID})

	log.Info("notification socket opened", zap.Uint("user_id", userID))

	go client.WritePump()
	go client.ReadPump(h.handleMessage)
}

// handleMessage answers client keepalives. The socket is push-only otherwise.
func (h *NotificationHandler) handleMessage(client *Client, data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		trySend(client, envelope(MsgTypeError, ErrorPayload{Message: "invalid message format"}))
		return
	}

	switch msg.Type {
	case MsgTypePing:
		trySend(client, envelope(MsgTypePong, nil))
	default:
		trySend(client, envelope(MsgTypeError, ErrorPayload{Message: "unsupported message type"}))
	}
}

// HubSender delivers notifications to the owner's open sockets.
type HubSender struct {
	Hub *Hub
}

// NewHubSender returns a HubSender publishing through hub.
func NewHubSender(hub *Hub) *HubSender {
	return &HubSender{Hub: hub}
}

// Name identifies the sender in logs and metrics.
func (s *HubSender) Name() string { return "websocket" }

// Deliver pushes n to every connection of its user. Users with no open
// socket are skipped.
func (s *HubSender) Deliver(ctx context.Context, n *models.Notification) error {
	room := UserRoom(n.UserID)
	if s.Hub.RoomSize(room) == 0 {
		return nil
	}
	return s.Hub.Publish(ctx, room, envelope(MsgTypeNotification, NotificationPayload{
		ID:        n.ID,
		Type:      string(n.Type),
		RecipeID:  n.RecipeID,
		Count:     n.Count,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	}))
}

func envelope(msgType string, payload interface{}) []byte {
	msg := WSMessage{Type: msgType}
	if payload != nil {
		msg.Payload, _ = json.Marshal(payload)
	}
	data, _ := json.Marshal(msg)
	return data
}

// trySend queues data without blocking the read pump. It recovers from a
// send on a channel the hub already closed.
func trySend(client *Client, data []byte) {
	defer func() { _ = recover() }()
	select {
	case client.Send <- data:
	default:
	}
}
