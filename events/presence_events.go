package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Reasons carried by SessionLeftEvent.
const (
	LeftReasonSwitch     = "switch"
	LeftReasonDisconnect = "disconnect"
)

// SessionJoinedEvent is emitted after a connection enters a room.
type SessionJoinedEvent struct {
	ConnID       string    `json:"conn_id"`
	Name         string    `json:"name"`
	Room         string    `json:"room"`
	PreviousRoom string    `json:"previous_room,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SessionLeftEvent is emitted when a connection leaves a room, either by
// switching rooms or by disconnecting.
type SessionLeftEvent struct {
	ConnID    string    `json:"conn_id"`
	Name      string    `json:"name"`
	Room      string    `json:"room"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressReportedEvent is emitted for every relayed wpm update.
// WPM is zero when the client sent a non-numeric value.
type ProgressReportedEvent struct {
	ConnID    string    `json:"conn_id"`
	Name      string    `json:"name"`
	Room      string    `json:"room"`
	WPM       float64   `json:"wpm"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the presence domain.
var (
	SessionJoinedV1 = helper.EventDefinition[SessionJoinedEvent](
		"presence",
		"SessionJoined",
		"v1",
	)

	SessionLeftV1 = helper.EventDefinition[SessionLeftEvent](
		"presence",
		"SessionLeft",
		"v1",
	)

	ProgressReportedV1 = helper.EventDefinition[ProgressReportedEvent](
		"presence",
		"ProgressReported",
		"v1",
	)
)
