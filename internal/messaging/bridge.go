package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-quest/internal/events"
)

// Envelope is the wire form of a bridged domain event.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// SessionSubject returns the NATS subject carrying one session's events.
func SessionSubject(sessionId string) string {
	return fmt.Sprintf("session-%s", sessionId)
}

// Publisher is the subset of NatsServer the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Bridge forwards domain events from a session's in-process bus onto its
// NATS subject. The engine stays decoupled from transports: it only knows
// its bus, and anyone who cares subscribes to the subject.
type Bridge struct {
	pub Publisher
}

func NewBridge(pub Publisher) *Bridge {
	return &Bridge{pub: pub}
}

// bridgedEvents lists every engine event worth forwarding to consumers.
var bridgedEvents = []string{
	events.RoomChangedEvent,
	events.RoomUnlockedEvent,
	events.ScoreChangedEvent,
	events.QuestionAnsweredEvent,
	events.GameCompletedEvent,
	events.GameSavedEvent,
	events.GameLoadedEvent,
	events.GameResetEvent,
	events.AchievementUnlockedEvent,
	events.ErrorEvent,
}

// Attach registers forwarding handlers for every bridged event on bus.
// Delivery is best-effort: a publish failure is logged, never surfaced to
// the emitting engine.
func (b *Bridge) Attach(sessionId string, bus *events.Bus) {
	subject := SessionSubject(sessionId)

	for _, event := range bridgedEvents {
		event := event
		bus.On(event, func(payload any) {
			data, err := json.Marshal(Envelope{Event: event, Payload: payload})
			if err != nil {
				slog.Warn("marshalling bridged event", "event", event, "error", err)
				return
			}
			if err := b.pub.Publish(subject, data); err != nil {
				slog.Warn("publishing bridged event", "event", event, "subject", subject, "error", err)
			}
		})
	}
}
