package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type countingManager struct {
	ticks int
	err   error
}

func (m *countingManager) Tick(context.Context) error {
	m.ticks++
	return m.err
}

func TestDriverTick(t *testing.T) {
	a := &countingManager{}
	b := &countingManager{}
	d := NewQuestDriver([]Manager{a, b})

	if err := d.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "a ticks", a.ticks, 1)
	testutil.AssertEqual(t, "b ticks", b.ticks, 1)
}

func TestDriverTickStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a := &countingManager{err: boom}
	b := &countingManager{}
	d := NewQuestDriver([]Manager{a, b})

	if err := d.Tick(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	testutil.AssertEqual(t, "b ticks", b.ticks, 0)
}

func TestDriverStartStopsOnCancel(t *testing.T) {
	m := &countingManager{}
	d := NewQuestDriver([]Manager{m}, WithTickLength(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not stop on cancel")
	}

	if m.ticks == 0 {
		t.Error("expected at least one tick")
	}
}
