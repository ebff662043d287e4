package presence

import (
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/events"
)

// Coordinator owns the join/leave state machine. Every method must run on
// the dispatcher goroutine: the broadcast order below depends on seeing the
// registry exactly as the previous event left it.
type Coordinator struct {
	registry  *Registry
	presence  *Presence
	gateway   Gateway
	messages  *MessageBuilder
	publisher Publisher
	appName   string
	logger    types.Logger
}

// NewCoordinator wires a coordinator. A nil publisher disables domain events.
func NewCoordinator(
	registry *Registry,
	gateway Gateway,
	messages *MessageBuilder,
	publisher Publisher,
	appName string,
	logger types.Logger,
) *Coordinator {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Coordinator{
		registry:  registry,
		presence:  NewPresence(registry),
		gateway:   gateway,
		messages:  messages,
		publisher: publisher,
		appName:   appName,
		logger:    logger,
	}
}

// Greet welcomes a freshly accepted connection. Nobody else is told.
func (c *Coordinator) Greet(connID string) {
	c.gateway.Emit(connID, domain.EventMessage, c.messages.System("Welcome to %s!", c.appName))
	c.logger.Info("Connection accepted", "connID", connID)
}

// Join moves connID into room under name. Re-entering the current room
// still announces a leave followed by a join.
func (c *Coordinator) Join(connID, name, room string) {
	c.logger.Info("Enter room requested", "connID", connID, "name", name, "room", room)

	var prevRoom string
	if prev, ok := c.registry.Get(connID); ok && prev.HasRoom() {
		prevRoom = prev.Room
	}

	// The leave notice goes out before the upsert, to whoever is still
	// subscribed to the old room.
	if prevRoom != "" {
		c.gateway.Unsubscribe(connID, prevRoom)
		c.gateway.ToRoom(prevRoom, "", domain.EventMessage, c.messages.System("%s has left the room", name))
	}

	session := c.registry.Upsert(connID, name, room)

	// The old room's list must be built after the upsert so it no longer
	// contains connID.
	if prevRoom != "" {
		c.gateway.ToRoom(prevRoom, "", domain.EventUserList, c.presence.RoomSnapshot(prevRoom))
	}

	c.gateway.Subscribe(connID, session.Room)
	c.gateway.Emit(connID, domain.EventMessage, c.messages.System("You have joined the %s room.", session.Room))
	c.gateway.ToRoom(session.Room, connID, domain.EventMessage, c.messages.System("%s has joined the room", session.Name))
	c.gateway.ToRoom(session.Room, "", domain.EventUserList, c.presence.RoomSnapshot(session.Room))
	c.gateway.ToAll(domain.EventRoomList, c.presence.RoomList())

	now := c.messages.Now()
	if prevRoom != "" {
		c.publisher.SessionLeft(events.SessionLeftEvent{
			ConnID:    connID,
			Name:      name,
			Room:      prevRoom,
			Reason:    events.LeftReasonSwitch,
			Timestamp: now,
		})
	}
	c.publisher.SessionJoined(events.SessionJoinedEvent{
		ConnID:       connID,
		Name:         session.Name,
		Room:         session.Room,
		PreviousRoom: prevRoom,
		Timestamp:    now,
	})
}

// Disconnect forgets connID. Connections that never joined a room cause no
// broadcasts at all.
func (c *Coordinator) Disconnect(connID string) {
	session, ok := c.registry.Get(connID)
	c.registry.Remove(connID)

	if !ok || !session.HasRoom() {
		c.logger.Info("Connection closed", "connID", connID)
		return
	}

	c.gateway.ToRoom(session.Room, "", domain.EventMessage, c.messages.System("%s has left the room", session.Name))
	c.gateway.ToRoom(session.Room, "", domain.EventUserList, c.presence.RoomSnapshot(session.Room))
	c.gateway.ToAll(domain.EventRoomList, c.presence.RoomList())

	c.publisher.SessionLeft(events.SessionLeftEvent{
		ConnID:    connID,
		Name:      session.Name,
		Room:      session.Room,
		Reason:    events.LeftReasonDisconnect,
		Timestamp: c.messages.Now(),
	})
	c.logger.Info("Connection closed", "connID", connID, "name", session.Name, "room", session.Room)
}
