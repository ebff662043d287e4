package presence

import (
	"fmt"
	"time"

	domain "github.com/example/typerush-presence/domain/presence"
)

// TimeLayout renders message times as numeric hour:minute:second in the
// en-US style clients expect, e.g. "3:04:05 PM".
const TimeLayout = "3:04:05 PM"

// MessageBuilder stamps outbound chat-shaped messages.
type MessageBuilder struct {
	admin string
	now   func() time.Time
}

// NewMessageBuilder creates a builder that signs system messages as admin.
func NewMessageBuilder(admin string, now func() time.Time) *MessageBuilder {
	if now == nil {
		now = time.Now
	}
	return &MessageBuilder{admin: admin, now: now}
}

// Build returns a message from name with the current local time.
func (b *MessageBuilder) Build(name string, text any) domain.Message {
	return domain.Message{
		Name: name,
		Text: text,
		Time: b.now().Local().Format(TimeLayout),
	}
}

// System returns a message from the reserved admin sender.
func (b *MessageBuilder) System(format string, args ...any) domain.Message {
	return b.Build(b.admin, fmt.Sprintf(format, args...))
}

// Now returns the builder's clock reading.
func (b *MessageBuilder) Now() time.Time {
	return b.now()
}
