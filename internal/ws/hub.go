package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/windoze95/forkful-api/internal/logger"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

// ErrHubStopped is returned by Publish after the hub's Run loop has exited.
var ErrHubStopped = errors.New("websocket hub stopped")

// Client represents a single WebSocket connection.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	RoomID string
	UserID uint
}

// Hub maintains active rooms and broadcasts messages.
type Hub struct {
	Rooms      map[string]map[*Client]bool // roomID -> set of clients
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan *RoomMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// RoomMessage carries a message destined for a specific room.
type RoomMessage struct {
	RoomID  string
	Message []byte
	Sender  *Client // nil for system messages
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan *RoomMessage),
		done:       make(chan struct{}),
	}
}

// UserRoom is the room every connection of a user joins.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// RoomSize returns the number of clients currently in roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms[roomID])
}

// Publish queues message for every client in roomID. It blocks until the hub
// accepts the message, ctx is done, or the hub stops.
func (h *Hub) Publish(ctx context.Context, roomID string, message []byte) error {
	select {
	case h.Broadcast <- &RoomMessage{RoomID: roomID, Message: message}:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until Run has returned and every client is closed, or ctx is done.
func (h *Hub) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run handles register, unregister, and broadcast events until ctx is done.
// It should be launched as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	log := logger.Get()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.RoomID] == nil {
				h.Rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.Rooms[client.RoomID][client] = true
			h.mu.Unlock()

			log.Debug("client registered",
				zap.String("room_id", client.RoomID),
				zap.Uint("user_id", client.UserID),
			)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

			log.Debug("client unregistered",
				zap.String("room_id", client.RoomID),
				zap.Uint("user_id", client.UserID),
			)

		case msg := <-h.Broadcast:
			var slow []*Client
			h.mu.RLock()
			for client := range h.Rooms[msg.RoomID] {
				if msg.Sender != nil && client == msg.Sender {
					continue
				}
				select {
				case client.Send <- msg.Message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// Clients whose send buffer is full are disconnected.
			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					h.remove(client)
				}
				h.mu.Unlock()
				log.Warn("dropped slow websocket clients",
					zap.String("room_id", msg.RoomID),
					zap.Int("count", len(slow)),
				)
			}
		}
	}
}

// remove deletes client from its room and closes its send channel.
// The caller must hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.Rooms[client.RoomID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Rooms, client.RoomID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.Rooms {
		for client := range clients {
			h.remove(client)
		}
	}
}

// ReadPump reads messages from the WebSocket connection. It is intended to be
// run in a per-client goroutine. The provided handler is called for each
// incoming message.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				logger.Get().Warn("unexpected websocket close",
					zap.String("room_id", c.RoomID),
					zap.Uint("user_id", c.UserID),
					zap.Error(err),
				)
			}
			break
		}
		handler(c, message)
	}
}

// WritePump sends messages from the Send channel to the WebSocket connection.
// It also sends periodic pings to keep the connection alive. It is intended to
// be run in a per-client goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
