package relayclient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/servihub/marketplace/internal/relay"

	"net/http/httptest"
)

func startRelay(t *testing.T) (*relay.Registry, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := relay.NewRegistry()
	r := gin.New()
	r.GET("/ws", relay.Handler(reg))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return reg, strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws"
}

func waitRoomSize(t *testing.T, reg *relay.Registry, key string, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if reg.RoomSize(key) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached size %d (got %d)", key, want, reg.RoomSize(key))
}

func recvMessage(t *testing.T, c *Client) relay.MessageEvent {
	t.Helper()
	select {
	case m := <-c.Messages:
		return m
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for new_message")
		return relay.MessageEvent{}
	}
}

func TestClient_ChatRoundTrip(t *testing.T) {
	reg, url := startRelay(t)
	ctx := context.Background()

	connA, err := Dial(ctx, url, "A")
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, err := Dial(ctx, url, "B")
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	if err := connA.JoinChat("A", "B"); err != nil {
		t.Fatalf("join A: %v", err)
	}
	if err := connB.JoinChat("B", "A"); err != nil {
		t.Fatalf("join B: %v", err)
	}
	key := relay.PairRoomKey("A", "B")
	waitRoomSize(t, reg, key, 2)

	sent := relay.MessageEvent{ID: "m1", Message: "hi", SenderID: "A", ReceiverID: "B", CreatedAt: "2024-01-01T00:00:00Z"}
	if err := connA.SendMessage(sent); err != nil {
		t.Fatalf("send: %v", err)
	}

	// both ends receive, the sender's connection included
	for name, c := range map[string]*Client{"A": connA, "B": connB} {
		got := recvMessage(t, c)
		if got.ID != "m1" || got.Message != "hi" || got.SenderID != "A" || got.ReceiverID != "B" {
			t.Fatalf("conn %s: unexpected event %+v", name, got)
		}
	}

	// after leaving, B no longer receives
	if err := connB.LeaveChat("B", "A"); err != nil {
		t.Fatalf("leave B: %v", err)
	}
	waitRoomSize(t, reg, key, 1)

	sent.ID = "m2"
	if err := connA.SendMessage(sent); err != nil {
		t.Fatalf("send m2: %v", err)
	}
	if got := recvMessage(t, connA); got.ID != "m2" {
		t.Fatalf("sender expected m2, got %+v", got)
	}
	select {
	case m := <-connB.Messages:
		t.Fatalf("B should not receive after leave, got %+v", m)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_ReviewRoundTrip(t *testing.T) {
	reg, url := startRelay(t)
	ctx := context.Background()

	watcher, err := Dial(ctx, url, "")
	if err != nil {
		t.Fatalf("dial watcher: %v", err)
	}
	defer watcher.Close()

	author, err := Dial(ctx, url, "author")
	if err != nil {
		t.Fatalf("dial author: %v", err)
	}
	defer author.Close()

	if err := watcher.JoinService("42"); err != nil {
		t.Fatalf("join service: %v", err)
	}
	waitRoomSize(t, reg, relay.ServiceRoomKey("42"), 1)

	payload := map[string]any{"id": "r1", "serviceId": "42", "rating": float64(5), "content": "great"}
	if err := author.SendReview(payload); err != nil {
		t.Fatalf("send review: %v", err)
	}

	select {
	case got := <-watcher.Reviews:
		if got["id"] != "r1" || got["serviceId"] != "42" {
			t.Fatalf("unexpected review payload %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for new_review")
	}

	// a review for a different service never reaches the watcher
	if err := author.SendReview(map[string]any{"id": "r2", "serviceId": "99"}); err != nil {
		t.Fatalf("send review 99: %v", err)
	}
	// and one without serviceId is silently dropped by the relay
	if err := author.SendReview(map[string]any{"id": "r3"}); err != nil {
		t.Fatalf("send review without serviceId: %v", err)
	}
	select {
	case got := <-watcher.Reviews:
		t.Fatalf("watcher should not receive foreign or malformed reviews, got %+v", got)
	case <-time.After(200 * time.Millisecond):
	}
}
