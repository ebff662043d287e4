package presence

import (
	"sort"
	"sync"

	domain "github.com/example/typerush-presence/domain/presence"
)

// entry pairs a session with the sequence number of its last upsert so
// listings come back in join order.
type entry struct {
	session domain.Session
	seq     uint64
}

// Registry is the in-memory table of active sessions, keyed by connection ID.
// Rooms are never stored; they are derived from the sessions' Room fields.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]entry
	nextSeq  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]entry),
	}
}

// Upsert inserts or fully replaces the session for id. Last write wins.
func (r *Registry) Upsert(id, name, room string) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := domain.Session{ID: id, Name: name, Room: room}
	r.nextSeq++
	r.sessions[id] = entry{session: session, seq: r.nextSeq}
	return session
}

// Remove deletes the session for id. It is a no-op when id is unknown.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns the current session for id.
func (r *Registry) Get(id string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e.session, ok
}

// ListInRoom returns the sessions whose room equals room.
func (r *Registry) ListInRoom(room string) []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Session, 0)
	for _, e := range r.ordered() {
		if e.session.Room == room {
			result = append(result, e.session)
		}
	}
	return result
}

// OccupiedRooms returns the distinct room values across all sessions.
func (r *Registry) OccupiedRooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	rooms := make([]string, 0)
	for _, e := range r.ordered() {
		if _, ok := seen[e.session.Room]; ok {
			continue
		}
		seen[e.session.Room] = struct{}{}
		rooms = append(rooms, e.session.Room)
	}
	return rooms
}

// RoomCounts returns every occupied room with its member count, in the
// order of OccupiedRooms, taken from a single consistent view.
func (r *Registry) RoomCounts() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := make(map[string]int)
	summaries := make([]RoomSummary, 0)
	for _, e := range r.ordered() {
		i, ok := index[e.session.Room]
		if !ok {
			i = len(summaries)
			index[e.session.Room] = i
			summaries = append(summaries, RoomSummary{Name: e.session.Room})
		}
		summaries[i].Users++
	}
	return summaries
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ordered must be called with r.mu held.
func (r *Registry) ordered() []entry {
	entries := make([]entry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	return entries
}
