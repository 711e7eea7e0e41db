package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-quest/internal/events"
	"github.com/pixil98/go-quest/internal/saves"
	"github.com/pixil98/go-quest/internal/storage"
)

const (
	DefaultIdleTimeout = 30 * time.Minute

	// maxSaveKeyLen bounds client-supplied save keys; keys become file
	// names and Redis keys, so they are held to the asset id character
	// class as well.
	maxSaveKeyLen = 100
)

// Session pairs an engine with its identity. Each session gets its own
// event bus so subscribers never see another player's events.
type Session struct {
	Id      string
	SaveKey string
	Engine  *Engine
}

// SessionManager tracks all live play sessions. Its Tick autosaves dirty
// sessions and evicts detached ones, so it plugs into the tick driver as a
// Manager.
type SessionManager struct {
	content     ContentProvider
	store       saves.Store
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	attached map[string]int
}

// SessionManagerOpt customizes a SessionManager.
type SessionManagerOpt func(*SessionManager)

// WithIdleTimeout overrides how long a detached session may sit untouched
// before the tick evicts it.
func WithIdleTimeout(d time.Duration) SessionManagerOpt {
	return func(m *SessionManager) {
		m.idleTimeout = d
	}
}

// WithSessionClock overrides the manager's time source for tests.
func WithSessionClock(now func() time.Time) SessionManagerOpt {
	return func(m *SessionManager) {
		m.now = now
	}
}

func NewSessionManager(content ContentProvider, store saves.Store, opts ...SessionManagerOpt) *SessionManager {
	m := &SessionManager{
		content:     content,
		store:       store,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		attached:    make(map[string]int),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Create starts a new session attached to its creating connection. saveKey
// names the persisted save the session reads and writes; when empty the
// session id is used, which makes the save effectively ephemeral. Keys come
// from the client and are rejected unless they fit the save-key character
// class, so they can never address storage outside the save namespace.
func (m *SessionManager) Create(ctx context.Context, saveKey string) (*Session, error) {
	if saveKey != "" && !validSaveKey(saveKey) {
		return nil, fmt.Errorf("%w: save key %q", ErrValidation, saveKey)
	}

	id := uuid.New().String()
	if saveKey == "" {
		saveKey = id
	}

	engine, err := NewEngine(ctx, m.content, events.NewBus(), m.store, saveKey, WithClock(m.now))
	if err != nil {
		return nil, fmt.Errorf("creating engine for session %s: %w", id, err)
	}

	session := &Session{
		Id:      id,
		SaveKey: saveKey,
		Engine:  engine,
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.attached[id] = 1
	m.mu.Unlock()

	slog.Info("session created", "session", id, "save_key", saveKey)

	return session, nil
}

func validSaveKey(key string) bool {
	return len(key) <= maxSaveKeyLen && storage.ValidIdentifier(key)
}

// Get returns the session for id. Returns nil if not found.
func (m *SessionManager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessions[id]
}

// Detach releases a connection's hold on its session, saving it on a
// best-effort basis. The session stays in the manager until the tick
// evicts it once it has also gone idle.
func (m *SessionManager) Detach(ctx context.Context, id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok && m.attached[id] > 0 {
		m.attached[id]--
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	if err := session.Engine.AutoSave(ctx); err != nil {
		slog.Warn("saving session on detach", "session", id, "error", err)
	}

	slog.Info("session detached", "session", id)
}

// Remove drops a session, saving it first on a best-effort basis.
func (m *SessionManager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.attached, id)
	m.mu.Unlock()

	if !ok {
		return
	}

	if err := session.Engine.AutoSave(ctx); err != nil {
		slog.Warn("saving session on removal", "session", id, "error", err)
	}

	slog.Info("session removed", "session", id)
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Tick autosaves every dirty session and evicts sessions that are both
// detached and idle past the timeout. A session with a connection attached
// is never evicted, no matter how long the player idles on a question.
// It satisfies the driver Manager interface.
func (m *SessionManager) Tick(ctx context.Context) error {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	attached := make(map[string]bool, len(m.sessions))
	for id, s := range m.sessions {
		live = append(live, s)
		attached[id] = m.attached[id] > 0
	}
	m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTimeout)

	for _, session := range live {
		if err := session.Engine.AutoSave(ctx); err != nil {
			slog.Warn("autosaving session", "session", session.Id, "error", err)
		}

		if !attached[session.Id] && session.Engine.LastActivity().Before(cutoff) {
			slog.Info("evicting idle session", "session", session.Id)
			m.Remove(ctx, session.Id)
		}
	}

	return nil
}
