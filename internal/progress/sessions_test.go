package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-quest/internal/saves"
	"github.com/pixil98/go-testutil"
)

func TestSessionManagerCreate(t *testing.T) {
	store := saves.NewMemoryStore()
	manager := NewSessionManager(newTestContent(), store)
	ctx := context.Background()

	a, err := manager.Create(ctx, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := manager.Create(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "save key", a.SaveKey, "player-1")
	testutil.AssertEqual(t, "ephemeral save key", b.SaveKey, b.Id)
	testutil.AssertEqual(t, "count", manager.Count(), 2)

	if a.Id == b.Id {
		t.Fatal("session ids must be unique")
	}
	if manager.Get(a.Id) != a {
		t.Fatal("expected to get session back by id")
	}
	if manager.Get("nope") != nil {
		t.Fatal("expected nil for unknown session")
	}
}

func TestSessionManagerCreateRejectsSaveKeys(t *testing.T) {
	store := saves.NewMemoryStore()
	manager := NewSessionManager(newTestContent(), store)
	ctx := context.Background()

	tests := map[string]string{
		"parent traversal": "../escaped",
		"nested traversal": "saves/../../etc/passwd",
		"absolute path":    "/etc/passwd",
		"embedded space":   "player one",
		"markup":           "<script>",
		"over length":      strings.Repeat("k", maxSaveKeyLen+1),
	}

	for name, key := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.Create(ctx, key); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error for key %q, got %v", key, err)
			}
		})
	}

	testutil.AssertEqual(t, "count", manager.Count(), 0)
}

func TestSessionManagerRemoveSaves(t *testing.T) {
	store := saves.NewMemoryStore()
	manager := NewSessionManager(newTestContent(), store)
	ctx := context.Background()

	session, err := manager.Create(ctx, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Engine.AnswerQuestion(ctx, "q1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.Remove(ctx, session.Id)

	testutil.AssertEqual(t, "count", manager.Count(), 0)
	if _, ok, _ := store.Get(ctx, "player-1"); !ok {
		t.Fatal("expected removal to persist the session")
	}

	// Removing again is a no-op.
	manager.Remove(ctx, session.Id)
}

func TestSessionManagerDetachSaves(t *testing.T) {
	store := saves.NewMemoryStore()
	manager := NewSessionManager(newTestContent(), store)
	ctx := context.Background()

	session, err := manager.Create(ctx, "player-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := session.Engine.AnswerQuestion(ctx, "q1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	manager.Detach(ctx, session.Id)

	// Detached sessions persist but stay around until the tick evicts them.
	testutil.AssertEqual(t, "count", manager.Count(), 1)
	if _, ok, _ := store.Get(ctx, "player-1"); !ok {
		t.Fatal("expected detach to persist the session")
	}

	// Detaching again, or detaching the unknown, is a no-op.
	manager.Detach(ctx, session.Id)
	manager.Detach(ctx, "nope")
}

func TestSessionManagerTick(t *testing.T) {
	clock := newFakeClock()
	store := saves.NewMemoryStore()
	manager := NewSessionManager(newTestContent(), store,
		WithSessionClock(clock.Now),
		WithIdleTimeout(10*time.Minute),
	)
	ctx := context.Background()

	detached, err := manager.Create(ctx, "idle-player")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := detached.Engine.AnswerQuestion(ctx, "q1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	manager.Detach(ctx, detached.Id)

	connected, err := manager.Create(ctx, "connected-player")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(11 * time.Minute)

	if err := manager.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	// Only the detached idle session is evicted; an attached session
	// survives no matter how long the player idles.
	testutil.AssertEqual(t, "count", manager.Count(), 1)
	if manager.Get(detached.Id) != nil {
		t.Fatal("expected detached idle session to be evicted")
	}
	if manager.Get(connected.Id) == nil {
		t.Fatal("expected attached session to survive idling")
	}
	if _, ok, _ := store.Get(ctx, "idle-player"); !ok {
		t.Fatal("expected detached session to be saved before eviction")
	}
}
