// Package memo provides memoized, coalesced fetches keyed by an identifier
// and a selector that tracks the currently active key.
package memo

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Cache memoizes successful fetches for its lifetime. Concurrent Get calls
// for the same key share a single in-flight fetch. Failures are not stored,
// so a later Get for the same key fetches again.
type Cache[K comparable, V any] struct {
	fetch FetchFunc[K, V]
	group singleflight.Group

	mu   sync.RWMutex
	data map[K]V
}

// NewCache creates a new cache backed by fetch.
func NewCache[K comparable, V any](fetch FetchFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{fetch: fetch, data: map[K]V{}}
}

// Get returns the memoized value for key, fetching it if needed. The shared
// fetch is detached from the caller's cancellation; a caller whose context
// ends stops waiting without affecting the other waiters.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := c.fetch(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.data[key] = v
		c.mu.Unlock()
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	}
}

// Forget drops the memoized value for key.
func (c *Cache[K, V]) Forget(key K) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Len returns the number of memoized keys.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}
