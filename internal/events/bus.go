package events

import (
	"log/slog"
	"sync"
)

// Handler receives the payload published for an event name.
type Handler func(payload any)

// Bus is a simple in-process named-channel publish/subscribe. Each engine
// instance owns one; there is no module-level singleton. Handlers for a
// name run in registration order, and a misbehaving handler never stops
// the rest or reaches the emitter.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// On registers a handler for the named event.
func (b *Bus) On(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[event] = append(b.handlers[event], h)
}

// Emit invokes all handlers registered for the named event, in
// registration order. Handler panics are recovered and logged so one bad
// subscriber can't take down the emitter or its peers.
func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	handlers := b.handlers[event]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(event, h, payload)
	}
}

func (b *Bus) dispatch(event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", event, "panic", r)
		}
	}()

	h(payload)
}
