package api

import (
	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/modules/stats"
)

// RoomResponse is the API response for an occupied room.
type RoomResponse struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// RoomUsersResponse is the API response for a room's members.
type RoomUsersResponse struct {
	Room  string           `json:"room"`
	Users []domain.Session `json:"users"`
}

// LeaderboardResponse is the API response for a room leaderboard.
type LeaderboardResponse struct {
	Room    string                   `json:"room"`
	Entries []stats.LeaderboardEntry `json:"entries"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
