package presence

import (
	domain "github.com/example/typerush-presence/domain/presence"
)

// Presence builds the read-side payloads broadcast after membership
// changes. Results are recomputed from the registry on every call.
type Presence struct {
	registry *Registry
}

// NewPresence creates a Presence view over registry.
func NewPresence(registry *Registry) *Presence {
	return &Presence{registry: registry}
}

// RoomSnapshot returns the "userList" payload for room.
func (p *Presence) RoomSnapshot(room string) domain.UserList {
	return domain.UserList{Users: p.registry.ListInRoom(room)}
}

// RoomList returns the "roomList" payload for every connection.
func (p *Presence) RoomList() domain.RoomList {
	return domain.RoomList{Rooms: p.registry.OccupiedRooms()}
}
