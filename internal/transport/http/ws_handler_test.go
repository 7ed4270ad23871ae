package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketQuizFlow(t *testing.T) {
	srv := newTestServer(t)
	server := httptest.NewServer(srv.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/quiz?category=3"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The picker always takes the first candidate: 14 after excluding 13.
	typ, payload := sendNext(t, conn, []int{13})
	if typ != "question" || payload["id"] != float64(14) {
		t.Fatalf("expected question 14, got %s %v", typ, payload)
	}

	// 14 was served on this connection, so only 15 is left once 13 is excluded again.
	typ, payload = sendNext(t, conn, []int{13})
	if typ != "question" || payload["id"] != float64(15) {
		t.Fatalf("expected question 15, got %s %v", typ, payload)
	}
	if payload["category"] != float64(3) {
		t.Fatalf("expected category 3, got %v", payload["category"])
	}

	typ, payload = sendNext(t, conn, []int{13})
	if typ != "error" || payload["error"] != float64(404) {
		t.Fatalf("expected exhausted error, got %s %v", typ, payload)
	}
}

func TestWebSocketRequiresCategory(t *testing.T) {
	srv := newTestServer(t)
	server := httptest.NewServer(srv.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/quiz"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 response, got %+v", resp)
	}
}

func sendNext(t *testing.T, conn *websocket.Conn, previous []int) (string, map[string]any) {
	t.Helper()
	msg := map[string]any{
		"type":    "next",
		"payload": map[string]any{"previous_questions": previous},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write next: %v", err)
	}
	var reply struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return reply.Type, reply.Payload
}
