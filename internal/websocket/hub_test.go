package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
)

func withUser(claims middleware.UserClaims, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), claims)))
	})
}

func dial(t *testing.T, hub *Hub, claims middleware.UserClaims) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(withUser(claims, HandleWebSocket(hub)))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for !hub.IsUserConnected(claims.UserID) {
		if time.Now().After(deadline) {
			t.Fatalf("client %s never registered", claims.UserID)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading message: %v", err)
	}
	var event map[string]interface{}
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return event
}

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dial(t, hub, middleware.UserClaims{UserID: "u1", Role: models.RoleClient})
	hub.BroadcastToUser("u1", Event{Type: "inspection_updated", Data: map[string]int{"completedItems": 3}})

	event := readEvent(t, conn)
	if event["type"] != "inspection_updated" {
		t.Errorf("event type = %v, want inspection_updated", event["type"])
	}
}

func TestBroadcastToRole(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := dial(t, hub, middleware.UserClaims{UserID: "a1", Role: models.RoleAdmin})
	dial(t, hub, middleware.UserClaims{UserID: "l1", Role: models.RoleLandlord})

	hub.BroadcastToRole(models.RoleAdmin, Event{Type: "inspection_updated"})
	if event := readEvent(t, admin); event["type"] != "inspection_updated" {
		t.Errorf("admin got %v", event)
	}
	if n := hub.GetClientCount(); n != 2 {
		t.Errorf("GetClientCount() = %d, want 2", n)
	}
}

func TestPingGetsPong(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := dial(t, hub, middleware.UserClaims{UserID: "u1", Role: models.RoleLandlord})
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("writing ping: %v", err)
	}
	if event := readEvent(t, conn); event["type"] != "pong" {
		t.Errorf("reply = %v, want pong", event)
	}
}

func TestHandleWebSocketRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleWebSocket(NewHub())(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
