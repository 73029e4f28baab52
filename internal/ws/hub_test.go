package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/windoze95/forkful-api/internal/models"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub()
	go hub.Run(ctx)
	return hub
}

// newTestClient creates a Client with a buffered Send channel and no real
// websocket.Conn.
func newTestClient(hub *Hub, roomID string, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Send:   make(chan []byte, 256),
		RoomID: roomID,
		UserID: userID,
	}
}

// readMessage reads a single WSMessage from the client's Send channel with a
// short timeout to prevent tests from hanging.
func readMessage(t *testing.T, client *Client) WSMessage {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("failed to unmarshal message from Send channel: %v", err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message on Send channel")
		return WSMessage{}
	}
}

func waitForRoomSize(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q size = %d, want %d", room, hub.RoomSize(room), want)
}

func makeToken(userID uint, tokenType string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
		"type":    tokenType,
	}
	s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	return s
}

// --- Hub ---

func TestUserRoom(t *testing.T) {
	if got := UserRoom(42); got != "user:42" {
		t.Errorf("UserRoom(42) = %q, want %q", got, "user:42")
	}
}

func TestHub_PublishReachesOnlyRoom(t *testing.T) {
	hub := startHub(t)
	alice := newTestClient(hub, UserRoom(1), 1)
	bob := newTestClient(hub, UserRoom(2), 2)
	hub.Register <- alice
	hub.Register <- bob
	waitForRoomSize(t, hub, UserRoom(1), 1)
	waitForRoomSize(t, hub, UserRoom(2), 1)

	if err := hub.Publish(context.Background(), UserRoom(1), envelope(MsgTypePong, nil)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if msg := readMessage(t, alice); msg.Type != MsgTypePong {
		t.Errorf("alice got %q, want %q", msg.Type, MsgTypePong)
	}
	select {
	case data := <-bob.Send:
		t.Errorf("bob unexpectedly received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, UserRoom(3), 3)
	hub.Register <- client
	waitForRoomSize(t, hub, UserRoom(3), 1)

	hub.Unregister <- client
	waitForRoomSize(t, hub, UserRoom(3), 0)

	if _, ok := <-client.Send; ok {
		t.Error("Send channel still open after unregister")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := &Client{Hub: hub, Send: make(chan []byte), RoomID: UserRoom(4), UserID: 4}
	hub.Register <- slow
	waitForRoomSize(t, hub, UserRoom(4), 1)

	if err := hub.Publish(context.Background(), UserRoom(4), []byte(`{}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	waitForRoomSize(t, hub, UserRoom(4), 0)
}

func TestHub_PublishAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	err := hub.Publish(context.Background(), UserRoom(1), []byte(`{}`))
	if !errors.Is(err, ErrHubStopped) {
		t.Errorf("err = %v, want ErrHubStopped", err)
	}
}

// --- HubSender ---

func TestHubSender_DeliversNotification(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, UserRoom(9), 9)
	hub.Register <- client
	waitForRoomSize(t, hub, UserRoom(9), 1)

	sender := NewHubSender(hub)
	n := &models.Notification{
		Model:    gorm.Model{ID: 5},
		UserID:   9,
		Type:     models.NotificationLikeMilestone,
		RecipeID: 12,
		Count:    10,
		Message:  "Your recipe reached 10 likes",
	}
	if err := sender.Deliver(context.Background(), n); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	msg := readMessage(t, client)
	if msg.Type != MsgTypeNotification {
		t.Fatalf("type = %q, want %q", msg.Type, MsgTypeNotification)
	}
	var payload NotificationPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ID != 5 || payload.RecipeID != 12 || payload.Count != 10 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestHubSender_NoSocketIsNoop(t *testing.T) {
	hub := startHub(t)
	sender := NewHubSender(hub)

	if err := sender.Deliver(context.Background(), &models.Notification{UserID: 77}); err != nil {
		t.Errorf("Deliver with no sockets: %v", err)
	}
}

// --- handleMessage ---

func TestHandleMessage_PingPong(t *testing.T) {
	hub := startHub(t)
	h := NewNotificationHandler(hub, testSecret, nil)
	client := newTestClient(hub, UserRoom(1), 1)

	h.handleMessage(client, []byte(`{"type":"ping"}`))

	if msg := readMessage(t, client); msg.Type != MsgTypePong {
		t.Errorf("type = %q, want %q", msg.Type, MsgTypePong)
	}
}

func TestHandleMessage_InvalidJSON(t *testing.T) {
	hub := startHub(t)
	h := NewNotificationHandler(hub, testSecret, nil)
	client := newTestClient(hub, UserRoom(1), 1)

	h.handleMessage(client, []byte(`not json`))

	if msg := readMessage(t, client); msg.Type != MsgTypeError {
		t.Errorf("type = %q, want %q", msg.Type, MsgTypeError)
	}
}

// --- HandleNotifications ---

func newSocketServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	h := NewNotificationHandler(hub, testSecret, []string{"https://app.example.com"})
	r := gin.New()
	r.GET("/v1/ws/notifications", h.HandleNotifications)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleNotifications_MissingToken(t *testing.T) {
	srv := newSocketServer(t, startHub(t))

	resp, err := http.Get(srv.URL + "/v1/ws/notifications")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestHandleNotifications_RefreshTokenRejected(t *testing.T) {
	srv := newSocketServer(t, startHub(t))

	resp, err := http.Get(srv.URL + "/v1/ws/notifications?token=" + makeToken(1, "refresh"))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestHandleNotifications_ConnectAndReceive(t *testing.T) {
	hub := startHub(t)
	srv := newSocketServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/notifications?token=" + makeToken(21, "access")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var connected WSMessage
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if connected.Type != MsgTypeConnected {
		t.Fatalf("first message type = %q, want %q", connected.Type, MsgTypeConnected)
	}

	waitForRoomSize(t, hub, UserRoom(21), 1)
	err = NewHubSender(hub).Deliver(context.Background(), &models.Notification{
		UserID:  21,
		Type:    models.NotificationSaveMilestone,
		Count:   1,
		Message: "Someone saved your recipe",
	})
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	var pushed WSMessage
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read notification: %v", err)
	}
	if pushed.Type != MsgTypeNotification {
		t.Errorf("type = %q, want %q", pushed.Type, MsgTypeNotification)
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewNotificationHandler(NewHub(), testSecret, []string{"https://app.example.com"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://app.example.com", true},
		{"http://localhost:3000", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := h.checkOrigin(req); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
