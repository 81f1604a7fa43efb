package brackets

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// joinServer upgrades every request and reports whether Join registered it.
func joinServer(t *testing.T, hub *Hub, room string) (string, <-chan bool) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	joined := make(chan bool, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		joined <- hub.Join(conn, room) != nil
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http"), joined
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}

func expectConnClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the server to close the connection")
	} else if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		t.Fatalf("connection still open: %v", err)
	}
}

func TestHub_JoinAfterShutdown(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	waitClosed(t, hub.done)

	url, joined := joinServer(t, hub, TournamentRoom(1))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case ok := <-joined:
		if ok {
			t.Error("stopped hub accepted a client")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Join blocked on a stopped hub")
	}
	expectConnClosed(t, conn)
}

func TestHub_ShutdownReleasesClients(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	room := BookingRoom(3)
	url, joined := joinServer(t, hub, room)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if ok := <-joined; !ok {
		t.Fatal("running hub rejected the client")
	}
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(room) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never joined the room")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	waitClosed(t, hub.done)
	if size := hub.RoomSize(room); size != 0 {
		t.Errorf("room size after shutdown = %d", size)
	}
	expectConnClosed(t, conn)

	// Broadcasting to a stopped hub is a no-op.
	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventSettlementUpdated})
}
