// Package realtime pushes events to connected users over websockets.
package realtime

import (
	"context"
	"sync"
)

const EVENT_NEW_MESSAGE = "newMessage"

// Conn is the write side of a live session. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Frame is what a client receives for every pushed event.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type session struct {
	mu   sync.Mutex
	conn Conn
}

func (s *session) write(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// Registry maps user ids to their live session. A user has at most one
// session; registering again replaces and closes the previous one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*session{}}
}

func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	old, ok := r.sessions[userID]
	r.sessions[userID] = &session{conn: conn}
	r.mu.Unlock()
	if ok && old.conn != conn {
		old.conn.Close()
	}
}

// Unregister removes the session of userID if it is still conn. A stale
// disconnect never evicts the session that replaced it.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok && s.conn == conn {
		delete(r.sessions, userID)
	}
}

func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	return s.conn, true
}

// Online returns the ids of every connected user.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Notify writes event to the session of userID. Offline users are skipped
// without error.
func (r *Registry) Notify(ctx context.Context, userID string, event string, payload interface{}) error {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return s.write(Frame{Event: event, Data: payload})
}
