package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"minesweeper_webapp/internal/domain"
	"minesweeper_webapp/internal/game"
	"minesweeper_webapp/internal/service"
	"minesweeper_webapp/internal/store"
)

func newWSServer(t *testing.T) (*httptest.Server, *Hub, *service.SessionService, *store.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	hub := NewHub()
	sessions := service.NewSessionService(st, game.NewEngine(nil), nil, hub, 0)

	router := gin.New()
	router.GET("/ws", HandleWS(hub, sessions))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub, sessions, st
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return string(msg)
}

func TestHandleWSRejectsMissingAuth(t *testing.T) {
	srv, _, _, _ := newWSServer(t)
	service.InitJWT("ws-test-secret")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "instance=i1"), nil)
	if err == nil {
		t.Fatalf("expected handshake failure without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "instance=i1&token=garbage"), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %+v", resp)
	}

	token, err := service.GenerateToken("p1", "dana")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "token="+token), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without instance, got %+v", resp)
	}
}

func TestHandleWSSendsInitialStateAndBroadcasts(t *testing.T) {
	srv, hub, _, st := newWSServer(t)
	service.InitJWT("ws-test-secret")

	const instance = "inst-ws"
	if err := st.Save(context.Background(), instance, domain.NewGameDocument(), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	token, err := service.GenerateToken("p1", "dana")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	conn := dial(t, wsURL(srv, "instance="+instance+"&token="+token))

	first := readFrame(t, conn)
	if !strings.Contains(first, `"type":"state"`) || !strings.Contains(first, `"page":"home"`) {
		t.Fatalf("unexpected initial frame: %s", first)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Watchers(instance) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(instance, []byte(`{"type":"state","instance":"inst-ws","probe":true}`))
	next := readFrame(t, conn)
	if !strings.Contains(next, `"probe":true`) {
		t.Fatalf("unexpected broadcast frame: %s", next)
	}

	hub.Broadcast("other-instance", []byte(`{"type":"state","leak":true}`))
	hub.Broadcast(instance, []byte(`{"type":"state","second":true}`))
	if frame := readFrame(t, conn); strings.Contains(frame, "leak") {
		t.Fatalf("frame from another instance leaked: %s", frame)
	}
}

func TestHubDropsDepartedWatchers(t *testing.T) {
	srv, hub, _, st := newWSServer(t)
	service.InitJWT("ws-test-secret")

	const instance = "inst-leave"
	if err := st.Save(context.Background(), instance, domain.NewGameDocument(), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, err := service.GenerateToken("p2", "rude")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	conn := dial(t, wsURL(srv, "instance="+instance+"&token="+token))
	readFrame(t, conn)

	deadline := time.Now().Add(2 * time.Second)
	for hub.Watchers(instance) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Watchers(instance) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher never unregistered after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
