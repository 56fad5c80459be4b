package relay

import (
	"encoding/json"
	"testing"
)

// fakeMember records every delivery; alive=false simulates a member whose
// send buffer is full.
type fakeMember struct {
	name   string
	alive  bool
	events []outFrame
}

func newFakeMember(name string) *fakeMember {
	return &fakeMember{name: name, alive: true}
}

func (f *fakeMember) Deliver(event string, data any) bool {
	if !f.alive {
		return false
	}
	f.events = append(f.events, outFrame{Event: event, Data: data})
	return true
}

func TestBroadcast_DeliversOncePerMemberIncludingSender(t *testing.T) {
	reg := NewRegistry()
	a := newFakeMember("a")
	b := newFakeMember("b")

	key := PairRoomKey("userA", "userB")
	reg.Join(a, key)
	reg.Join(b, key)
	reg.Join(a, key) // repeated join is a no-op

	msg := MessageEvent{ID: "m1", Message: "hi", SenderID: "userA", ReceiverID: "userB", CreatedAt: "t1"}
	n := reg.Broadcast(key, EventNewMessage, msg)
	if n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}
	for _, m := range []*fakeMember{a, b} {
		if len(m.events) != 1 {
			t.Fatalf("member %s: expected exactly 1 event, got %d", m.name, len(m.events))
		}
		if m.events[0].Event != EventNewMessage {
			t.Fatalf("member %s: expected new_message, got %s", m.name, m.events[0].Event)
		}
		got := m.events[0].Data.(MessageEvent)
		if got.ID != "m1" || got.Message != "hi" {
			t.Fatalf("member %s: unexpected payload %+v", m.name, got)
		}
	}
}

func TestLeave_StopsDelivery(t *testing.T) {
	reg := NewRegistry()
	a := newFakeMember("a")
	b := newFakeMember("b")

	key := PairRoomKey("userA", "userB")
	reg.Join(a, key)
	reg.Join(b, key)

	reg.Broadcast(key, EventNewMessage, MessageEvent{ID: "m1"})
	if len(b.events) != 1 {
		t.Fatalf("expected delivery before leave, got %d", len(b.events))
	}

	reg.Leave(b, key)
	reg.Broadcast(key, EventNewMessage, MessageEvent{ID: "m2"})
	if len(b.events) != 1 {
		t.Fatalf("expected no delivery after leave, got %d events", len(b.events))
	}
	if len(a.events) != 2 {
		t.Fatalf("remaining member should still receive, got %d events", len(a.events))
	}

	// leaving a room you are not in is a no-op
	reg.Leave(b, key)
}

func TestBroadcast_EmptyRoom(t *testing.T) {
	reg := NewRegistry()
	if n := reg.Broadcast("nobody_here", EventNewMessage, MessageEvent{ID: "m1"}); n != 0 {
		t.Fatalf("expected 0 deliveries to empty room, got %d", n)
	}
}

func TestAuthenticate_LastWriterWins(t *testing.T) {
	reg := NewRegistry()
	first := newFakeMember("first")
	second := newFakeMember("second")

	key := PairRoomKey("u1", "u2")
	reg.Join(first, key)

	reg.Authenticate(first, "u1")
	reg.Authenticate(second, "u1")

	cur, ok := reg.ConnectionFor("u1")
	if !ok || cur != Member(second) {
		t.Fatalf("expected index to point at the most recent connection")
	}

	// the earlier connection keeps its room membership
	reg.Broadcast(key, EventNewMessage, MessageEvent{ID: "m1"})
	if len(first.events) != 1 {
		t.Fatalf("overwritten connection should still be a room member, got %d events", len(first.events))
	}
}

func TestDrop_RemovesAllMembershipsAndIndex(t *testing.T) {
	reg := NewRegistry()
	m := newFakeMember("m")
	other := newFakeMember("other")

	chatKey := PairRoomKey("u1", "u2")
	svcKey := ServiceRoomKey("42")
	reg.Join(m, chatKey)
	reg.Join(m, svcKey)
	reg.Join(other, chatKey)
	reg.Authenticate(m, "u1")

	reg.Drop(m)

	if _, ok := reg.ConnectionFor("u1"); ok {
		t.Fatalf("expected index entry to be cleared on drop")
	}
	reg.Broadcast(chatKey, EventNewMessage, MessageEvent{ID: "m1"})
	reg.Broadcast(svcKey, EventNewReview, map[string]any{"id": "r1"})
	if len(m.events) != 0 {
		t.Fatalf("dropped member must not receive, got %d events", len(m.events))
	}
	if len(other.events) != 1 {
		t.Fatalf("other member should still receive, got %d events", len(other.events))
	}
}

func TestDrop_LeavesNewerIndexEntryAlone(t *testing.T) {
	reg := NewRegistry()
	old := newFakeMember("old")
	cur := newFakeMember("cur")

	reg.Authenticate(old, "u1")
	reg.Authenticate(cur, "u1")
	reg.Drop(old)

	got, ok := reg.ConnectionFor("u1")
	if !ok || got != Member(cur) {
		t.Fatalf("dropping a stale connection must not clear the newer index entry")
	}
}

func TestBroadcast_EvictsUnresponsiveMember(t *testing.T) {
	reg := NewRegistry()
	stuck := newFakeMember("stuck")
	stuck.alive = false
	ok := newFakeMember("ok")

	key := ServiceRoomKey("7")
	reg.Join(stuck, key)
	reg.Join(ok, key)

	if n := reg.Broadcast(key, EventNewReview, map[string]any{"id": "r1"}); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if reg.RoomSize(key) != 1 {
		t.Fatalf("expected unresponsive member to be evicted, room size %d", reg.RoomSize(key))
	}
}

// frame-level tests drive handleFrame the way the read pump does

func testClient(reg *Registry) *Client {
	return &Client{id: "test-conn", registry: reg, send: make(chan outFrame, sendBufferSize)}
}

func frame(t *testing.T, event string, data any) Frame {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal frame data: %v", err)
	}
	return Frame{Event: event, Data: raw}
}

func drain(c *Client) []outFrame {
	var out []outFrame
	for {
		select {
		case f := <-c.send:
			out = append(out, f)
		default:
			return out
		}
	}
}

func TestHandleFrame_ChatScenario(t *testing.T) {
	reg := NewRegistry()
	connA := testClient(reg)
	connB := testClient(reg)

	connA.handleFrame(frame(t, EventAuthenticate, "A"))
	connB.handleFrame(frame(t, EventAuthenticate, "B"))
	connA.handleFrame(frame(t, EventJoinChat, map[string]string{"userId": "A", "targetUserId": "B"}))
	connB.handleFrame(frame(t, EventJoinChat, map[string]string{"userId": "B", "targetUserId": "A"}))

	connA.handleFrame(frame(t, EventSendMessage, map[string]string{
		"senderId": "A", "receiverId": "B", "message": "hi", "messageId": "m1", "created_at": "t1",
	}))

	for _, c := range []*Client{connA, connB} {
		got := drain(c)
		if len(got) != 1 {
			t.Fatalf("expected 1 frame, got %d", len(got))
		}
		if got[0].Event != EventNewMessage {
			t.Fatalf("expected new_message, got %s", got[0].Event)
		}
		ev := got[0].Data.(MessageEvent)
		if ev.ID != "m1" || ev.SenderID != "A" || ev.ReceiverID != "B" || ev.CreatedAt != "t1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestHandleFrame_ReviewScenario(t *testing.T) {
	reg := NewRegistry()
	watcher := testClient(reg)
	author := testClient(reg)

	watcher.handleFrame(frame(t, EventJoinService, map[string]string{"serviceId": "42"}))

	// author is not joined; its own send still reaches the watcher
	author.handleFrame(frame(t, EventSendReview, map[string]any{
		"id": "r1", "serviceId": "42", "rating": 5, "content": "great",
	}))
	got := drain(watcher)
	if len(got) != 1 || got[0].Event != EventNewReview {
		t.Fatalf("expected one new_review at watcher, got %+v", got)
	}
	payload := got[0].Data.(map[string]any)
	if payload["id"] != "r1" || payload["serviceId"] != "42" {
		t.Fatalf("payload not forwarded verbatim: %+v", payload)
	}
	if len(drain(author)) != 0 {
		t.Fatalf("non-member author must not receive its own review")
	}

	// a review for another service produces nothing here
	author.handleFrame(frame(t, EventSendReview, map[string]any{"id": "r2", "serviceId": "99"}))
	if len(drain(watcher)) != 0 {
		t.Fatalf("watcher of service 42 must not see reviews for service 99")
	}
}

func TestHandleFrame_ReviewWithoutServiceID_Dropped(t *testing.T) {
	reg := NewRegistry()
	watcher := testClient(reg)
	sender := testClient(reg)

	watcher.handleFrame(frame(t, EventJoinService, map[string]string{"serviceId": "42"}))
	sender.handleFrame(frame(t, EventSendReview, map[string]any{"id": "r1", "rating": 4}))

	if got := drain(watcher); len(got) != 0 {
		t.Fatalf("review without serviceId must not broadcast, got %+v", got)
	}
}

func TestHandleFrame_MalformedAndUnknownIgnored(t *testing.T) {
	reg := NewRegistry()
	c := testClient(reg)

	c.handleFrame(Frame{Event: EventSendMessage, Data: json.RawMessage(`"not an object"`)})
	c.handleFrame(frame(t, EventSendMessage, map[string]string{"message": "no ids"}))
	c.handleFrame(frame(t, EventJoinChat, map[string]string{"userId": "A"}))
	c.handleFrame(frame(t, EventAuthenticate, map[string]string{"not": "a string"}))
	c.handleFrame(Frame{Event: "no_such_event", Data: json.RawMessage(`{}`)})

	if got := drain(c); len(got) != 0 {
		t.Fatalf("malformed frames must not produce deliveries, got %+v", got)
	}
	if c.userID != "" {
		t.Fatalf("malformed authenticate must not set user id")
	}
}

func TestHandleFrame_LeaveChatStopsDelivery(t *testing.T) {
	reg := NewRegistry()
	connA := testClient(reg)
	connB := testClient(reg)

	join := map[string]string{"userId": "A", "targetUserId": "B"}
	connA.handleFrame(frame(t, EventJoinChat, join))
	connB.handleFrame(frame(t, EventJoinChat, map[string]string{"userId": "B", "targetUserId": "A"}))

	send := map[string]string{"senderId": "A", "receiverId": "B", "message": "x", "messageId": "m1", "created_at": "t1"}
	connA.handleFrame(frame(t, EventSendMessage, send))
	if len(drain(connB)) != 1 {
		t.Fatalf("expected delivery before leave")
	}
	drain(connA)

	connB.handleFrame(frame(t, EventLeaveChat, map[string]string{"userId": "B", "targetUserId": "A"}))
	send["messageId"] = "m2"
	connA.handleFrame(frame(t, EventSendMessage, send))
	if len(drain(connB)) != 0 {
		t.Fatalf("expected no delivery after leave")
	}
	if len(drain(connA)) != 1 {
		t.Fatalf("sender still in the room must receive its own broadcast")
	}
}
