package messaging

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pixil98/go-quest/internal/events"
	"github.com/pixil98/go-testutil"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestSessionSubject(t *testing.T) {
	testutil.AssertEqual(t, "subject", SessionSubject("abc-123"), "session-abc-123")
}

func TestBridgeForwardsEvents(t *testing.T) {
	pub := &fakePublisher{}
	bus := events.NewBus()
	NewBridge(pub).Attach("abc", bus)

	bus.Emit(events.ScoreChangedEvent, events.ScoreChanged{
		Score:         140,
		PointsEarned:  140,
		PreviousScore: 0,
	})

	if len(pub.payloads) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.payloads))
	}
	testutil.AssertEqual(t, "subject", pub.subjects[0], "session-abc")

	var env struct {
		Event   string              `json:"event"`
		Payload events.ScoreChanged `json:"payload"`
	}
	if err := json.Unmarshal(pub.payloads[0], &env); err != nil {
		t.Fatalf("unmarshalling envelope: %v", err)
	}
	testutil.AssertEqual(t, "event", env.Event, events.ScoreChangedEvent)
	testutil.AssertEqual(t, "score", env.Payload.Score, 140)
}

func TestBridgeCoversAllEvents(t *testing.T) {
	pub := &fakePublisher{}
	bus := events.NewBus()
	NewBridge(pub).Attach("abc", bus)

	for _, event := range bridgedEvents {
		bus.Emit(event, nil)
	}

	testutil.AssertEqual(t, "publish count", len(pub.payloads), len(bridgedEvents))
}

func TestBridgePublishFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats down")}
	bus := events.NewBus()
	NewBridge(pub).Attach("abc", bus)

	// A broken publisher must never disturb the emitting engine.
	bus.Emit(events.GameResetEvent, events.GameReset{})
}

func TestBridgeSessionsAreIsolated(t *testing.T) {
	pub := &fakePublisher{}
	bridge := NewBridge(pub)

	busA := events.NewBus()
	busB := events.NewBus()
	bridge.Attach("aaa", busA)
	bridge.Attach("bbb", busB)

	busA.Emit(events.RoomUnlockedEvent, events.RoomUnlocked{RoomId: "library"})

	if len(pub.subjects) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.subjects))
	}
	testutil.AssertEqual(t, "subject", pub.subjects[0], "session-aaa")
}
