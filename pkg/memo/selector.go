package memo

import (
	"context"
	"sync"
)

// Status is the phase of the selected key.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is the state of the selected key. Exactly one of the three statuses
// holds; a ready state with an empty value is distinct from an error.
type State[K comparable, V any] struct {
	Key    K
	Status Status
	Value  V
	Err    error
}

// Future is the pending result of a single Select call.
type Future[V any] struct {
	done   chan struct{}
	value  V
	err    error
	cancel context.CancelFunc
}

// Done is closed once the fetch has returned.
func (f *Future[V]) Done() <-chan struct{} { return f.done }

// Cancel aborts the fetch.
func (f *Future[V]) Cancel() { f.cancel() }

// Wait blocks until the fetch returns or ctx ends.
func (f *Future[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case <-f.done:
		return f.value, f.err
	}
}

// Selector tracks a single active key. Results of fetches started for a
// key that is no longer active are discarded, and their contexts cancelled.
type Selector[K comparable, V any] struct {
	fetch    FetchFunc[K, V]
	onChange func(State[K, V])

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  State[K, V]
	active bool
	wg     sync.WaitGroup
}

// NewSelector creates a selector. onChange, when non-nil, is called with
// every state applied by a completed fetch.
func NewSelector[K comparable, V any](fetch FetchFunc[K, V], onChange func(State[K, V])) *Selector[K, V] {
	return &Selector[K, V]{fetch: fetch, onChange: onChange}
}

// Select makes key the active key and starts fetching it.
func (s *Selector[K, V]) Select(ctx context.Context, key K) *Future[V] {
	fctx, cancel := context.WithCancel(ctx)
	f := &Future[V]{done: make(chan struct{}), cancel: cancel}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.active = true
	s.state = State[K, V]{Key: key, Status: StatusLoading}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		v, err := s.fetch(fctx, key)
		f.value, f.err = v, err

		s.mu.Lock()
		current := gen == s.gen
		if current && err != nil {
			s.state = State[K, V]{Key: key, Status: StatusError, Err: err}
		} else if current {
			s.state = State[K, V]{Key: key, Status: StatusReady, Value: v}
		}
		st := s.state
		s.mu.Unlock()
		close(f.done)

		if current && s.onChange != nil {
			s.onChange(st)
		}
	}()
	return f
}

// State returns the state of the active key. ok is false before the first
// Select.
func (s *Selector[K, V]) State() (State[K, V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.active
}

// Close cancels the active fetch and waits for every started fetch to return.
func (s *Selector[K, V]) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.mu.Unlock()
	s.wg.Wait()
}
