package presence

import (
	"encoding/json"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/events"
)

// Relay forwards chat, typing, screen-change and progress events to the
// sender's current room. Senders without a room are ignored.
type Relay struct {
	registry  *Registry
	gateway   Gateway
	messages  *MessageBuilder
	publisher Publisher
	logger    types.Logger
}

// NewRelay wires a relay. A nil publisher disables progress events.
func NewRelay(
	registry *Registry,
	gateway Gateway,
	messages *MessageBuilder,
	publisher Publisher,
	logger types.Logger,
) *Relay {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Relay{
		registry:  registry,
		gateway:   gateway,
		messages:  messages,
		publisher: publisher,
		logger:    logger,
	}
}

// roomOf resolves the sender's room from the registry, never from the payload.
func (r *Relay) roomOf(connID string) (string, bool) {
	session, ok := r.registry.Get(connID)
	if !ok || !session.HasRoom() {
		return "", false
	}
	return session.Room, true
}

// Chat relays a chat line to the whole room, sender included. The display
// name comes from the payload.
func (r *Relay) Chat(connID, name, text string) {
	room, ok := r.roomOf(connID)
	if !ok {
		r.logger.Debug("Dropping chat message without room", "connID", connID)
		return
	}
	r.gateway.ToRoom(room, "", domain.EventMessage, r.messages.Build(name, text))
}

// Activity tells the rest of the room that name is typing.
func (r *Relay) Activity(connID, name string) {
	room, ok := r.roomOf(connID)
	if !ok {
		return
	}
	r.gateway.ToRoom(room, connID, domain.EventActivity, name)
}

// ChangeScreen signals the whole room to switch screens. The requested
// room is ignored in favour of the sender's own room, and any member may
// trigger it.
func (r *Relay) ChangeScreen(connID, _, _ string) {
	room, ok := r.roomOf(connID)
	if !ok {
		return
	}
	r.logger.Debug("Screen change requested", "connID", connID, "room", room)
	r.gateway.ToRoom(room, "", domain.EventChangeScreenRes, nil)
}

// Progress relays a wpm reading to the whole room on the "brod" event.
// The wpm value is forwarded exactly as received.
func (r *Relay) Progress(connID, name string, wpm json.RawMessage) {
	room, ok := r.roomOf(connID)
	if !ok {
		return
	}
	r.gateway.ToRoom(room, "", domain.EventBroadcastWPM, r.messages.Build(name, rawValue(wpm)))

	var value float64
	if len(wpm) > 0 {
		if err := json.Unmarshal(wpm, &value); err != nil {
			r.logger.Debug("Recording non-numeric wpm as zero",
				"connID", connID, "wpm", string(wpm), "error", err)
		}
	}
	r.publisher.ProgressReported(events.ProgressReportedEvent{
		ConnID:    connID,
		Name:      name,
		Room:      room,
		WPM:       value,
		Timestamp: r.messages.Now(),
	})
}

// rawValue keeps a missing wpm rendering as JSON null.
func rawValue(v json.RawMessage) any {
	if len(v) == 0 {
		return nil
	}
	return v
}
