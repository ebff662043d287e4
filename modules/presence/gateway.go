package presence

import (
	"github.com/example/typerush-presence/events"
)

// Gateway is the connection transport the coordinator and relay talk to.
// All sends are fire-and-forget: implementations must not block on a slow
// or closed recipient.
type Gateway interface {
	// Emit sends an event to a single connection.
	Emit(connID, event string, payload any)
	// Subscribe adds the connection to a room channel.
	Subscribe(connID, room string)
	// Unsubscribe removes the connection from a room channel.
	Unsubscribe(connID, room string)
	// ToRoom sends an event to every subscriber of room except exceptID.
	// An empty exceptID addresses the whole room.
	ToRoom(room, exceptID, event string, payload any)
	// ToAll sends an event to every connection.
	ToAll(event string, payload any)
}

// Publisher receives domain events for consumers outside the core.
type Publisher interface {
	SessionJoined(event events.SessionJoinedEvent)
	SessionLeft(event events.SessionLeftEvent)
	ProgressReported(event events.ProgressReportedEvent)
}

type nopPublisher struct{}

func (nopPublisher) SessionJoined(events.SessionJoinedEvent)       {}
func (nopPublisher) SessionLeft(events.SessionLeftEvent)           {}
func (nopPublisher) ProgressReported(events.ProgressReportedEvent) {}
