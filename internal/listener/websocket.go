package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WsListener serves the browser-facing websocket endpoint. Each accepted
// connection gets its own client loop driven by the connection manager.
type WsListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewWsListener(port uint16, cm *ConnectionManager) *WsListener {
	return &WsListener{
		port: port,
		cm:   cm,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from anywhere during development;
	// origin policy belongs to the deployment proxy.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (l *WsListener) Start(ctx context.Context) error {
	// Cancelable context shared by all connections so shutdown stops them
	// together.
	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer func() { _ = conn.Close() }()

		l.cm.AcceptConnection(connCtx, conn)
	})

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = svr.Shutdown(shutdownCtx)
			cancelConns()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "websocket listener starting", "port", l.port)

	err := svr.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	return nil
}
