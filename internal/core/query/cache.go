// Package query caches fetched collections by key, collapses concurrent
// fetches of the same key and forces refetches after mutations.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Well-known keys. Child keys use "<parent>:<suffix>" so invalidating the
// parent drops them as well.
const (
	KeyCurrentUser = "currentUser"
	KeyUsers       = "users"
	KeyServices    = "services"
	KeyOrders      = "orders"
)

// ServicesByCategory is the key of a category-scoped services list.
func ServicesByCategory(category string) string {
	return KeyServices + ":category:" + category
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds the last successful result per key until it is invalidated.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	// gen is bumped on invalidation so a fetch that started before it does
	// not store a stale result afterwards.
	gen   map[string]uint64
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		gen:     make(map[string]uint64),
	}
}

// Fetch returns the cached value for key or runs fn to load it. Concurrent
// callers for the same key share one call to fn, which is not cancelled when
// one of them gives up; bound it with a client timeout. Errors are never
// cached.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		v, ok := e.value.(T)
		if !ok {
			return zero, fmt.Errorf("query %q: cached %T", key, e.value)
		}
		return v, nil
	}
	if _, ok := c.gen[key]; !ok {
		c.gen[key] = 0
	}
	started := c.gen[key]
	c.mu.Unlock()

	// The shared call outlives any single caller: it runs without the
	// caller's cancellation, and each caller stops waiting when its own ctx
	// is done.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fn(shared)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[key] == started {
			c.entries[key] = entry{value: v, fetchedAt: time.Now()}
		}
		c.mu.Unlock()
		return v, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}
	raw := res.Val
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("query %q: fetched %T", key, raw)
	}
	return v, nil
}

// Invalidate drops each key and its children so the next Fetch refetches.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		for existing := range c.gen {
			if existing == k || strings.HasPrefix(existing, k+":") {
				c.gen[existing]++
				delete(c.entries, existing)
				c.group.Forget(existing)
			}
		}
	}
}

// Reset drops everything, e.g. when the session changes hands.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.gen {
		c.gen[k]++
		c.group.Forget(k)
	}
	c.entries = make(map[string]entry)
}

// FetchedAt reports when key was last stored, if it is cached.
func (c *Cache) FetchedAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.fetchedAt, ok
}
