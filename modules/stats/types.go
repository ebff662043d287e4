package stats

// Request-reply service names registered by the stats module.
const (
	ServiceGetRoomStats   = "get-room-stats"
	ServiceGetLeaderboard = "get-leaderboard"
)

// GetRoomStatsRequest is the request for the get-room-stats service.
type GetRoomStatsRequest struct {
	Room string `json:"room"`
}

// RoomStats summarises the recorded history of one room.
type RoomStats struct {
	Room    string  `json:"room"`
	Joins   int64   `json:"joins"`
	Leaves  int64   `json:"leaves"`
	Samples int64   `json:"samples"`
	BestWPM float64 `json:"best_wpm"`
}

// GetLeaderboardRequest is the request for the get-leaderboard service.
// A non-positive limit selects the configured default.
type GetLeaderboardRequest struct {
	Room  string `json:"room"`
	Limit int    `json:"limit,omitempty"`
}

// LeaderboardEntry is the best wpm a name reached in a room.
type LeaderboardEntry struct {
	Name    string  `gorm:"column:name" json:"name"`
	BestWPM float64 `gorm:"column:best_wpm" json:"best_wpm"`
	Samples int64   `gorm:"column:samples" json:"samples"`
}

// GetLeaderboardResponse is the response of the get-leaderboard service.
type GetLeaderboardResponse struct {
	Room    string             `json:"room"`
	Entries []LeaderboardEntry `json:"entries"`
}
