package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second * 30
)

// Manager is anything that wants periodic housekeeping: session autosave,
// idle eviction, and the like.
type Manager interface {
	Tick(context.Context) error
}

// QuestDriver runs every manager's Tick on a fixed interval until the
// context is canceled. It satisfies the go-service worker contract.
type QuestDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewQuestDriver(managers []Manager, opts ...QuestDriverOpt) *QuestDriver {
	d := &QuestDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *QuestDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *QuestDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
