// Package memory broadcasts review events to in-process subscribers.
package memory

import (
	"context"
	"sync"

	"github.com/abhishek622/movieticket/review/pkg/model"
)

// Hub broadcasts events to subscribers. Slow subscribers miss events
// instead of blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan model.ReviewEvent
	nextID int
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	return &Hub{subs: map[int]chan model.ReviewEvent{}, buffer: buffer}
}

// Subscribe registers a new subscriber. The returned cancel function
// unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan model.ReviewEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan model.ReviewEvent, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers event to every subscriber with room in its buffer.
func (h *Hub) Publish(_ context.Context, event model.ReviewEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
