package relayclient

import (
	"testing"

	"github.com/servihub/marketplace/internal/relay"
)

func msg(id, text string) relay.MessageEvent {
	return relay.MessageEvent{ID: id, Message: text, SenderID: "A", ReceiverID: "B", CreatedAt: "t-" + id}
}

func ids(msgs []relay.MessageEvent) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func wantOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestMessageFeed_PushDeduplicates(t *testing.T) {
	f := NewMessageFeed()
	f.ApplySnapshot([]relay.MessageEvent{msg("m1", "one"), msg("m2", "two")})

	// the sender's own broadcast loops back with an id history already has
	if f.ApplyPush(msg("m2", "two")) {
		t.Fatalf("push with known id must be rejected")
	}
	if !f.ApplyPush(msg("m3", "three")) {
		t.Fatalf("push with new id must be accepted")
	}
	if f.ApplyPush(msg("m3", "three")) {
		t.Fatalf("duplicate push must be rejected")
	}
	wantOrder(t, ids(f.Messages()), []string{"m1", "m2", "m3"})
}

func TestMessageFeed_SnapshotIsGroundTruth(t *testing.T) {
	f := NewMessageFeed()
	f.ApplyPush(msg("m2", "pushed early"))
	f.ApplyPush(msg("m9", "not yet persisted to reader"))

	// the poll returns the canonical timestamp order; m9 hasn't landed yet
	f.ApplySnapshot([]relay.MessageEvent{msg("m1", "one"), msg("m2", "two"), msg("m3", "three")})
	wantOrder(t, ids(f.Messages()), []string{"m1", "m2", "m3", "m9"})

	// snapshot content wins over the pushed copy
	for _, m := range f.Messages() {
		if m.ID == "m2" && m.Message != "two" {
			t.Fatalf("snapshot row must win on duplicate id, got %q", m.Message)
		}
	}

	// the next poll confirms m9 and fixes its position
	f.ApplySnapshot([]relay.MessageEvent{msg("m1", "one"), msg("m2", "two"), msg("m3", "three"), msg("m9", "nine")})
	wantOrder(t, ids(f.Messages()), []string{"m1", "m2", "m3", "m9"})

	// once confirmed, dropping out of the snapshot drops it from the feed
	f.ApplySnapshot([]relay.MessageEvent{msg("m1", "one")})
	wantOrder(t, ids(f.Messages()), []string{"m1"})
}

func TestMessageFeed_EmptySnapshotKeepsUnconfirmedPushes(t *testing.T) {
	f := NewMessageFeed()
	f.ApplyPush(msg("m1", "pushed"))
	f.ApplySnapshot(nil)
	wantOrder(t, ids(f.Messages()), []string{"m1"})
	if f.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", f.Len())
	}
}

func rv(id string) map[string]any {
	return map[string]any{"id": id, "serviceId": "42", "rating": 5, "content": "c-" + id}
}

func reviewIDs(reviews []map[string]any) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i], _ = r["id"].(string)
	}
	return out
}

func TestReviewFeed_PushPrepends(t *testing.T) {
	f := NewReviewFeed()
	f.ApplySnapshot([]map[string]any{rv("r2"), rv("r1")}) // newest first

	if !f.ApplyPush(rv("r3")) {
		t.Fatalf("new review must be accepted")
	}
	if f.ApplyPush(rv("r3")) {
		t.Fatalf("duplicate review must be rejected")
	}
	wantOrder(t, reviewIDs(f.Reviews()), []string{"r3", "r2", "r1"})
}

func TestReviewFeed_PushWithoutIDIgnored(t *testing.T) {
	f := NewReviewFeed()
	if f.ApplyPush(map[string]any{"serviceId": "42"}) {
		t.Fatalf("payload without id must be ignored")
	}
	if len(f.Reviews()) != 0 {
		t.Fatalf("expected empty feed")
	}
}

func TestReviewFeed_SnapshotConfirmsPushes(t *testing.T) {
	f := NewReviewFeed()
	f.ApplyPush(rv("r9"))

	f.ApplySnapshot([]map[string]any{rv("r2"), rv("r1")})
	wantOrder(t, reviewIDs(f.Reviews()), []string{"r9", "r2", "r1"})

	f.ApplySnapshot([]map[string]any{rv("r9"), rv("r2"), rv("r1")})
	wantOrder(t, reviewIDs(f.Reviews()), []string{"r9", "r2", "r1"})
}
