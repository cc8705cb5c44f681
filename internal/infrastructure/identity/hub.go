// Package identity holds the in-process identity infrastructure: the event hub
// that fans identity changes out to client sessions, and the local account
// store used when no remote identity backend is configured.
package identity

import (
	"sync"

	"github.com/planwise/business-planner/internal/core/ports"
)

// Hub delivers identity events synchronously to every subscriber.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(ports.IdentityEvent)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(ports.IdentityEvent))}
}

var _ ports.IdentityEvents = (*Hub)(nil)

// Publish calls every subscriber registered at the time of the call.
// Subscribers must not publish from inside their callback.
func (h *Hub) Publish(event ports.IdentityEvent) {
	h.mu.RLock()
	fns := make([]func(ports.IdentityEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (h *Hub) Subscribe(fn func(ports.IdentityEvent)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the current number of subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
