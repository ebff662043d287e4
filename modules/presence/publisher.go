package presence

import (
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/typerush-presence/events"
)

// busPublisher publishes presence events on the mono EventBus. Failures are
// logged and never reach the caller.
type busPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

func (p *busPublisher) SessionJoined(event events.SessionJoinedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.SessionJoinedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish SessionJoined event", "connID", event.ConnID, "error", err)
	}
}

func (p *busPublisher) SessionLeft(event events.SessionLeftEvent) {
	if p.bus == nil {
		return
	}
	if err := events.SessionLeftV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish SessionLeft event", "connID", event.ConnID, "error", err)
	}
}

func (p *busPublisher) ProgressReported(event events.ProgressReportedEvent) {
	if p.bus == nil {
		return
	}
	if err := events.ProgressReportedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish ProgressReported event", "connID", event.ConnID, "error", err)
	}
}
