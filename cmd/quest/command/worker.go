package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-quest/internal/driver"
	"github.com/pixil98/go-quest/internal/listener"
	"github.com/pixil98/go-quest/internal/messaging"
	"github.com/pixil98/go-quest/internal/progress"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load content assets
	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("building content dictionary: %w", err)
	}

	// Create the save store
	saveStore, err := cfg.Saves.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("building save store: %w", err)
	}

	// Create the embedded nats server
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("building nats server: %w", err)
	}

	// Session manager: one progression engine per live session
	var sessionOpts []progress.SessionManagerOpt
	if cfg.Sessions.IdleTimeout != "" {
		d, err := time.ParseDuration(cfg.Sessions.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing idle_timeout: %w", err)
		}
		sessionOpts = append(sessionOpts, progress.WithIdleTimeout(d))
	}
	sessions := progress.NewSessionManager(dict, saveStore, sessionOpts...)

	bridge := messaging.NewBridge(natsServer)
	cm := listener.NewConnectionManager(sessions, dict, bridge, natsServer)

	// Create listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Tick driver for autosave and idle eviction
	var driverOpts []driver.QuestDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	questDriver := driver.NewQuestDriver([]driver.Manager{sessions}, driverOpts...)

	return service.WorkerList{
		"nats":      natsServer,
		"driver":    questDriver,
		"listeners": &listeners,
	}, nil
}
