package presence

import (
	"encoding/json"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/typerush-presence/domain/presence"
)

// Inbound is one named event received from a connection.
type Inbound struct {
	ConnID string
	Event  string
	Data   json.RawMessage
}

// EnterRoomPayload is the body of "enterRoom".
type EnterRoomPayload struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

// ChatPayload is the body of an inbound "message".
type ChatPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ProgressPayload is the body of "sendwpm". Room is accepted on the wire
// but never used for routing.
type ProgressPayload struct {
	Name string          `json:"name"`
	WPM  json.RawMessage `json:"wpm"`
	Room string          `json:"room"`
}

// Router decodes inbound events and hands them to the coordinator or relay.
type Router struct {
	coordinator *Coordinator
	relay       *Relay
	logger      types.Logger
}

// NewRouter creates a router.
func NewRouter(coordinator *Coordinator, relay *Relay, logger types.Logger) *Router {
	return &Router{
		coordinator: coordinator,
		relay:       relay,
		logger:      logger,
	}
}

// Handle processes a single inbound event. Unknown events and payloads that
// do not decode are dropped.
func (r *Router) Handle(in Inbound) {
	switch in.Event {
	case domain.EventConnect:
		r.coordinator.Greet(in.ConnID)
	case domain.EventDisconnect:
		r.coordinator.Disconnect(in.ConnID)
	case domain.EventEnterRoom:
		var p EnterRoomPayload
		if r.decode(in, &p) {
			r.coordinator.Join(in.ConnID, p.Name, p.Room)
		}
	case domain.EventMessage:
		var p ChatPayload
		if r.decode(in, &p) {
			r.relay.Chat(in.ConnID, p.Name, p.Text)
		}
	case domain.EventActivity:
		var name string
		if r.decode(in, &name) {
			r.relay.Activity(in.ConnID, name)
		}
	case domain.EventChangeScreenReq:
		name, room := positionalPair(in.Data)
		r.relay.ChangeScreen(in.ConnID, name, room)
	case domain.EventSendWPM:
		var p ProgressPayload
		if r.decode(in, &p) {
			r.relay.Progress(in.ConnID, p.Name, p.WPM)
		}
	default:
		r.logger.Debug("Ignoring unknown event", "connID", in.ConnID, "event", in.Event)
	}
}

func (r *Router) decode(in Inbound, v any) bool {
	if len(in.Data) == 0 {
		r.logger.Debug("Dropping event without payload", "connID", in.ConnID, "event", in.Event)
		return false
	}
	if err := json.Unmarshal(in.Data, v); err != nil {
		r.logger.Debug("Dropping malformed payload", "connID", in.ConnID, "event", in.Event, "error", err)
		return false
	}
	return true
}

// positionalPair reads up to two string arguments sent as a JSON array.
// Anything else yields empty strings; the caller does not depend on them.
func positionalPair(data json.RawMessage) (string, string) {
	var args []json.RawMessage
	if err := json.Unmarshal(data, &args); err != nil {
		return "", ""
	}
	var first, second string
	if len(args) > 0 {
		_ = json.Unmarshal(args[0], &first)
	}
	if len(args) > 1 {
		_ = json.Unmarshal(args[1], &second)
	}
	return first, second
}
