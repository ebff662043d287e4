package stats

import "time"

// Kinds of RoomEvent.
const (
	KindJoined = "joined"
	KindLeft   = "left"
)

// RoomEvent is one room entry or exit.
type RoomEvent struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ConnID       string    `gorm:"size:36;index" json:"conn_id"`
	Name         string    `gorm:"size:100" json:"name"`
	Room         string    `gorm:"size:100;index;not null" json:"room"`
	Kind         string    `gorm:"size:16;not null" json:"kind"`
	Reason       string    `gorm:"size:16" json:"reason,omitempty"`
	PreviousRoom string    `gorm:"size:100" json:"previous_room,omitempty"`
	OccurredAt   time.Time `gorm:"index" json:"occurred_at"`
}

// TableName returns the table name for RoomEvent model.
func (RoomEvent) TableName() string {
	return "room_events"
}

// ProgressSample is one relayed wpm reading.
type ProgressSample struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ConnID     string    `gorm:"size:36;index" json:"conn_id"`
	Name       string    `gorm:"size:100" json:"name"`
	Room       string    `gorm:"size:100;index;not null" json:"room"`
	WPM        float64   `gorm:"column:wpm;not null" json:"wpm"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TableName returns the table name for ProgressSample model.
func (ProgressSample) TableName() string {
	return "progress_samples"
}
