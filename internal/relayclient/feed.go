package relayclient

import (
	"sync"

	"github.com/servihub/marketplace/internal/relay"
)

// MessageFeed reconciles the three sources that populate a conversation view:
// the initial history fetch, recurring poll snapshots, and relay pushes.
// Everything is keyed by message id; the poll is ground truth and a push is
// only a latency shortcut. A pushed message the poll hasn't confirmed yet
// stays appended after the snapshot order until a later poll includes it.
type MessageFeed struct {
	mu      sync.Mutex
	entries map[string]relay.MessageEvent
	order   []string
	pushed  map[string]struct{}
}

func NewMessageFeed() *MessageFeed {
	return &MessageFeed{
		entries: make(map[string]relay.MessageEvent),
		pushed:  make(map[string]struct{}),
	}
}

// ApplyPush appends the message unless its id is already known, either from
// history or from an earlier push (the sender's own broadcast loops back).
// Reports whether the message was new.
func (f *MessageFeed) ApplyPush(m relay.MessageEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[m.ID]; ok {
		return false
	}
	f.entries[m.ID] = m
	f.order = append(f.order, m.ID)
	f.pushed[m.ID] = struct{}{}
	return true
}

// ApplySnapshot replaces the feed with the polled history. Snapshot rows win
// on duplicate ids (last write wins); pushed messages missing from the
// snapshot are re-appended in their arrival order so a push is never dropped
// by a poll that raced the write.
func (f *MessageFeed) ApplySnapshot(snapshot []relay.MessageEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inSnapshot := make(map[string]struct{}, len(snapshot))
	order := make([]string, 0, len(snapshot))
	entries := make(map[string]relay.MessageEvent, len(snapshot))
	for _, m := range snapshot {
		if _, dup := inSnapshot[m.ID]; dup {
			entries[m.ID] = m
			continue
		}
		inSnapshot[m.ID] = struct{}{}
		order = append(order, m.ID)
		entries[m.ID] = m
		delete(f.pushed, m.ID)
	}

	for _, id := range f.order {
		if _, confirmed := inSnapshot[id]; confirmed {
			continue
		}
		if _, isPushed := f.pushed[id]; !isPushed {
			continue
		}
		order = append(order, id)
		entries[id] = f.entries[id]
	}

	f.entries = entries
	f.order = order
}

// Messages returns the current merged list, oldest first.
func (f *MessageFeed) Messages() []relay.MessageEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]relay.MessageEvent, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entries[id])
	}
	return out
}

func (f *MessageFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// ReviewFeed is the same keyed merge for a service's review stream. The view
// renders newest first, so pushes prepend.
type ReviewFeed struct {
	mu      sync.Mutex
	entries map[string]map[string]any
	order   []string
	pushed  map[string]struct{}
}

func NewReviewFeed() *ReviewFeed {
	return &ReviewFeed{
		entries: make(map[string]map[string]any),
		pushed:  make(map[string]struct{}),
	}
}

func reviewID(payload map[string]any) (string, bool) {
	id, ok := payload["id"].(string)
	return id, ok && id != ""
}

// ApplyPush prepends the review unless its id is already present. Payloads
// without a string id are ignored; the poll will carry them.
func (f *ReviewFeed) ApplyPush(payload map[string]any) bool {
	id, ok := reviewID(payload)
	if !ok {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, seen := f.entries[id]; seen {
		return false
	}
	f.entries[id] = payload
	f.order = append([]string{id}, f.order...)
	f.pushed[id] = struct{}{}
	return true
}

// ApplySnapshot replaces the feed with the polled list (already newest
// first); unconfirmed pushes stay at the front.
func (f *ReviewFeed) ApplySnapshot(snapshot []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inSnapshot := make(map[string]struct{}, len(snapshot))
	order := make([]string, 0, len(snapshot))
	entries := make(map[string]map[string]any, len(snapshot))
	for _, payload := range snapshot {
		id, ok := reviewID(payload)
		if !ok {
			continue
		}
		if _, dup := inSnapshot[id]; dup {
			entries[id] = payload
			continue
		}
		inSnapshot[id] = struct{}{}
		order = append(order, id)
		entries[id] = payload
		delete(f.pushed, id)
	}

	var front []string
	for _, id := range f.order {
		if _, confirmed := inSnapshot[id]; confirmed {
			continue
		}
		if _, isPushed := f.pushed[id]; !isPushed {
			continue
		}
		front = append(front, id)
		entries[id] = f.entries[id]
	}

	f.entries = entries
	f.order = append(front, order...)
}

// Reviews returns the merged list, newest first.
func (f *ReviewFeed) Reviews() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entries[id])
	}
	return out
}
