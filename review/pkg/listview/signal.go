package listview

import (
	"sync"
	"sync/atomic"
)

// Signal broadcasts "a review changed" to unrelated subscribers.
type Signal struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func()
}

// NewSignal creates a signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers fn and returns a function removing it.
func (s *Signal) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every subscriber in subscription order.
func (s *Signal) Notify() {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// Badge counts notifications of a signal not yet marked seen.
type Badge struct {
	unseen      atomic.Int64
	unsubscribe func()
}

// NewBadge creates a badge counting notifications of s.
func NewBadge(s *Signal) *Badge {
	b := &Badge{}
	b.unsubscribe = s.Subscribe(func() { b.unseen.Add(1) })
	return b
}

// Count returns the number of unseen notifications.
func (b *Badge) Count() int {
	return int(b.unseen.Load())
}

// Seen resets the count.
func (b *Badge) Seen() {
	b.unseen.Store(0)
}

// Close stops counting.
func (b *Badge) Close() {
	b.unsubscribe()
}
