package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, id, role string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + id + "&role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", role, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", h.GetClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcastToRolesReachesOnlyListedRoles(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("id"), r.URL.Query().Get("role"))
	}))
	defer srv.Close()

	admin := dial(t, srv, "a1", "admin")
	teacher := dial(t, srv, "t1", "teacher")
	waitForClients(t, hub, 2)

	sent := hub.BroadcastToRoles(EventRegistrationCreated, map[string]string{"id": "r1"}, "superadmin", "admin")
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}

	admin.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := admin.ReadMessage()
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != EventRegistrationCreated || msg.Data["id"] != "r1" {
		t.Fatalf("unexpected message: %s", raw)
	}

	teacher.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := teacher.ReadMessage(); err == nil {
		t.Fatal("teacher received an admin-only event")
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "a1", "admin")
	}))
	defer srv.Close()

	conn := dial(t, srv, "a1", "admin")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	if sent := hub.BroadcastToRoles(EventContactReceived, nil, "admin"); sent != 0 {
		t.Fatalf("sent = %d after disconnect", sent)
	}
}
