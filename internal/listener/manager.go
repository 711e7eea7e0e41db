package listener

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-quest/internal/messaging"
	"github.com/pixil98/go-quest/internal/progress"
)

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// ConnectionManager owns everything a new connection needs: the session
// manager, the content source for rendering, and the event plumbing.
type ConnectionManager struct {
	sessions   *progress.SessionManager
	content    progress.ContentProvider
	bridge     *messaging.Bridge
	subscriber Subscriber
}

func NewConnectionManager(sessions *progress.SessionManager, content progress.ContentProvider, bridge *messaging.Bridge, sub Subscriber) *ConnectionManager {
	return &ConnectionManager{
		sessions:   sessions,
		content:    content,
		bridge:     bridge,
		subscriber: sub,
	}
}

// AcceptConnection runs a client session over the websocket until it
// disconnects or the context is canceled.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn *websocket.Conn) {
	c := &client{
		conn:    conn,
		manager: m,
		msgs:    make(chan []byte, 16),
	}

	if err := c.run(ctx); err != nil {
		slog.WarnContext(ctx, "client session ended", "error", err)
	}
}
