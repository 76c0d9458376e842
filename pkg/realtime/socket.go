package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	PONG_WAIT   = 60 * time.Second
	PING_PERIOD = PONG_WAIT * 9 / 10
)

// Authenticator resolves a bearer token to a user id.
type Authenticator func(ctx context.Context, token string) (string, error)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades GET /socket?token=... and keeps the caller registered
// until the connection drops.
func Handler(registry *Registry, authenticate Authenticator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authenticate(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Not authorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("error upgrading websocket", "user_id", userID, "msg", err.Error())
			return
		}
		sc := &socketConn{conn: conn}
		registry.Register(userID, sc)
		logger.Debug("user connected", "user_id", userID)
		defer func() {
			registry.Unregister(userID, sc)
			sc.Close()
			logger.Debug("user disconnected", "user_id", userID)
		}()

		done := make(chan struct{})
		defer close(done)
		go sc.keepalive(done)

		conn.SetReadDeadline(time.Now().Add(PONG_WAIT))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(PONG_WAIT))
		})
		for {
			// clients only receive, anything they send is discarded
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}
}

// socketConn bounds every write with a deadline. Pings use WriteControl,
// which gorilla allows concurrently with the registry's serialised writes.
type socketConn struct {
	conn *websocket.Conn
}

func (s *socketConn) WriteJSON(v interface{}) error {
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteJSON(v)
}

func (s *socketConn) Close() error {
	return s.conn.Close()
}

func (s *socketConn) keepalive(done <-chan struct{}) {
	ticker := time.NewTicker(PING_PERIOD)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
