package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is the wire shape of a pushed notification.
type Event struct {
	Event string    `json:"event"`
	Data  any       `json:"data"`
	At    time.Time `json:"at"`
}

type session struct {
	client *Client
	gen    uint64
}

// Registry maps an authenticated user id to their single live channel.
// A second connection for the same user replaces the first
// (last-connect-wins); a generation token ensures a stale disconnect
// never clears a newer connection.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	gen      uint64
	sessions map[string]session
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With(slog.String("component", "presence")),
		sessions: make(map[string]session),
	}
}

// Bind registers a fresh connection for the user and starts its pumps.
// Any previous connection for the same user is closed.
func (r *Registry) Bind(userID string, conn *websocket.Conn) *Client {
	client := newClient(userID, conn, r.logger)

	r.mu.Lock()
	if old, ok := r.sessions[userID]; ok {
		close(old.client.send)
	}
	r.gen++
	gen := r.gen
	r.sessions[userID] = session{client: client, gen: gen}
	connectionsGauge.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	r.logger.Debug("channel registered", slog.String("user_id", userID))

	go client.writePump()
	go client.readPump(r, gen)
	return client
}

// Release removes the user's presence entry, but only when the entry
// still belongs to the disconnecting connection.
func (r *Registry) Release(userID string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok || s.gen != gen {
		return
	}
	delete(r.sessions, userID)
	close(s.client.send)
	connectionsGauge.Set(float64(len(r.sessions)))
	r.logger.Debug("channel released", slog.String("user_id", userID))
}

// Connected reports whether the user currently holds a live channel.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// deliver pushes an event to the user's channel if one is registered.
// The send is non-blocking: a full buffer counts as a drop. Sends happen
// under the read lock so a channel is never closed mid-send.
func (r *Registry) deliver(userID string, ev Event) deliverResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return deliverOffline
	}
	select {
	case s.client.send <- ev:
		return deliverOK
	default:
		return deliverFull
	}
}

// deliverAll pushes an event to every connected channel.
func (r *Registry) deliverAll(ev Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		select {
		case s.client.send <- ev:
			n++
		default:
		}
	}
	return n
}

type deliverResult int

const (
	deliverOK deliverResult = iota
	deliverOffline
	deliverFull
)
