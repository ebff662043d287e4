package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/typerush-presence/domain/presence"
	"github.com/example/typerush-presence/modules/presence"
)

var (
	errMissingEvent  = errors.New("frame has no event name")
	errReservedEvent = errors.New("lifecycle events cannot be sent by clients")
	jsonNull         = []byte("null")
)

// inboundFrame is the envelope of every client frame:
// {"event": "...", "data": ...}.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// decodeFrame turns a raw client frame into an inbound event for connID.
// A null or absent data field yields an event without payload.
func decodeFrame(connID string, raw []byte) (presence.Inbound, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return presence.Inbound{}, fmt.Errorf("decode frame: %w", err)
	}
	switch frame.Event {
	case "":
		return presence.Inbound{}, errMissingEvent
	case domain.EventConnect, domain.EventDisconnect:
		return presence.Inbound{}, errReservedEvent
	}

	data := frame.Data
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		data = nil
	}
	return presence.Inbound{ConnID: connID, Event: frame.Event, Data: data}, nil
}
