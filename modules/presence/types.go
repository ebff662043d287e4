package presence

import (
	domain "github.com/example/typerush-presence/domain/presence"
)

// Request-reply service names registered by the presence module.
const (
	ServiceListRooms    = "list-rooms"
	ServiceGetRoomUsers = "get-room-users"
)

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// RoomSummary describes one occupied room.
type RoomSummary struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// ListRoomsResponse is the response of the list-rooms service.
type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

// GetRoomUsersRequest is the request for the get-room-users service.
type GetRoomUsersRequest struct {
	Room string `json:"room"`
}

// GetRoomUsersResponse is the response of the get-room-users service.
type GetRoomUsersResponse struct {
	Room  string           `json:"room"`
	Users []domain.Session `json:"users"`
}
