package presence

// Session is the server-side record of one connected client.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
}

// HasRoom reports whether the session belongs to a room.
// An empty room string counts as no room.
func (s Session) HasRoom() bool {
	return s.Room != ""
}

// Message is the chat-shaped payload of the "message" and "brod" events.
// Text is a string for chat and the raw wpm value for progress updates.
type Message struct {
	Name string `json:"name"`
	Text any    `json:"text"`
	Time string `json:"time"`
}

// UserList is the membership snapshot of one room.
type UserList struct {
	Users []Session `json:"users"`
}

// RoomList is the set of currently occupied rooms.
type RoomList struct {
	Rooms []string `json:"rooms"`
}

// Inbound event names. "message" and "activity" are also sent back out.
const (
	EventEnterRoom       = "enterRoom"
	EventMessage         = "message"
	EventActivity        = "activity"
	EventChangeScreenReq = "change-screen-req"
	EventSendWPM         = "sendwpm"
)

// Lifecycle events raised by the transport, never sent by clients.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// Outbound-only event names.
const (
	EventUserList        = "userList"
	EventRoomList        = "roomList"
	EventChangeScreenRes = "change-screen-res"
	EventBroadcastWPM    = "brod"
)
