package relay

import (
	"log"
	"sync"
)

// Member is one connected transport session. Deliver must not block; it
// returns false when the member can no longer accept frames (its send buffer
// is full or its connection is gone), which gets it evicted.
type Member interface {
	Deliver(event string, data any) bool
}

// Registry owns all of the relay's mutable state: room membership and the
// user-to-connection index. Gorilla runs one reader goroutine per connection,
// so unlike a single-threaded event loop every mutation here races with the
// others; the single mutex restores the single-writer behavior the room logic
// assumes.
//
// The registry never originates or validates payloads. Everything it
// broadcasts was already persisted through the HTTP path by the sender.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]map[Member]struct{}
	joined map[Member]map[string]struct{}
	users  map[string]Member
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[Member]struct{}),
		joined: make(map[Member]map[string]struct{}),
		users:  make(map[string]Member),
	}
}

// Authenticate records m as the connection for userID. Last writer wins: a
// second tab, or a reconnect, overwrites the entry. Room membership is
// independent and is not touched.
func (r *Registry) Authenticate(m Member, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = m
}

// Join adds m to the room. Re-joining is a no-op.
func (r *Registry) Join(m Member, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.rooms[roomKey]
	if room == nil {
		room = make(map[Member]struct{})
		r.rooms[roomKey] = room
	}
	room[m] = struct{}{}

	joined := r.joined[m]
	if joined == nil {
		joined = make(map[string]struct{})
		r.joined[m] = joined
	}
	joined[roomKey] = struct{}{}
}

// Leave removes m from the room. Leaving a room m is not in is a no-op.
func (r *Registry) Leave(m Member, roomKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(m, roomKey)
}

func (r *Registry) leaveLocked(m Member, roomKey string) {
	if room, ok := r.rooms[roomKey]; ok {
		delete(room, m)
		if len(room) == 0 {
			delete(r.rooms, roomKey)
		}
	}
	if joined, ok := r.joined[m]; ok {
		delete(joined, roomKey)
		if len(joined) == 0 {
			delete(r.joined, m)
		}
	}
}

// Broadcast delivers the event to every current member of the room, the
// sender's own connection included when it is a member. Members that refuse
// delivery are evicted from all rooms. Returns the number of deliveries.
func (r *Registry) Broadcast(roomKey, event string, data any) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomKey]
	if !ok {
		return 0
	}

	delivered := 0
	var dead []Member
	for m := range room {
		if m.Deliver(event, data) {
			delivered++
		} else {
			dead = append(dead, m)
		}
	}
	for _, m := range dead {
		log.Printf("relay: evicting unresponsive member from room %s", roomKey)
		r.dropLocked(m)
	}
	return delivered
}

// Drop releases everything held for m: every room membership and any index
// entry still pointing at it. An index entry already overwritten by a newer
// connection is left alone.
func (r *Registry) Drop(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(m)
}

func (r *Registry) dropLocked(m Member) {
	for roomKey := range r.joined[m] {
		if room, ok := r.rooms[roomKey]; ok {
			delete(room, m)
			if len(room) == 0 {
				delete(r.rooms, roomKey)
			}
		}
	}
	delete(r.joined, m)

	for userID, cur := range r.users {
		if cur == m {
			delete(r.users, userID)
		}
	}
}

// RoomSize reports the current membership count of a room.
func (r *Registry) RoomSize(roomKey string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[roomKey])
}

// ConnectionFor returns the most recently authenticated connection for a user.
func (r *Registry) ConnectionFor(userID string) (Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.users[userID]
	return m, ok
}
