// Package events provides a small publish/subscribe hub the record store
// uses to announce mutations. Subscribers come and go independently of the
// publisher; nothing in the core depends on any particular listener.
package events

import (
	"sync"
	"time"
)

// Kind classifies a mutation event.
type Kind string

const (
	KindStored         Kind = "user_data_stored"
	KindUpdated        Kind = "user_data_updated"
	KindDeleted        Kind = "user_data_deleted"
	KindSessionChanged Kind = "session_changed"
)

// Event is a single mutation notification.
type Event struct {
	Kind Kind
	At   time.Time
}

// Hub fans events out to all current subscribers. Sends never block: a
// subscriber whose buffer is full misses the event rather than stalling the
// publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener. The returned cancel func removes the
// subscription and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers e to every subscriber with room in its buffer.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
