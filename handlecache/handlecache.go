// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handlecache provides a cache of values grouped by an external
// handle, such as a device or connection, whose lifetime ends with that
// handle.
//
// A Cache is owned by whichever component manages the handles and is passed
// to its users explicitly. Releasing a handle tears down every value created
// for it through the configured release callback.
package handlecache

import (
	"math"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultCapacity is the per-handle capacity used when Config.Capacity is zero.
const DefaultCapacity = 1024

// Unbounded disables eviction: entries leave the cache only through Remove,
// Release or Close.
const Unbounded = -1

// Config configures a Cache.
type Config[H comparable, K comparable, V any] struct {
	// Capacity bounds the number of entries kept per handle. The least
	// recently used entry is released when a handle exceeds it. Zero selects
	// DefaultCapacity; Unbounded (or any negative value) never evicts.
	Capacity int

	// Release is called exactly once for every entry leaving the cache,
	// whether by eviction, Remove, Release or Close. It must not call back
	// into the cache.
	Release func(h H, k K, v V)

	// Logger receives debug records for handle teardown. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Handles  int
	Hits     uint64
	Misses   uint64
	Releases uint64
}

// Cache is a set of per-handle LRU caches. It is safe for concurrent use.
type Cache[H comparable, K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	release  func(H, K, V)
	handles  map[H]*lru.Cache[K, V]
	log      *zap.Logger

	hits     atomic.Uint64
	misses   atomic.Uint64
	releases atomic.Uint64
}

// New returns an empty cache.
func New[H comparable, K comparable, V any](cfg Config[H, K, V]) *Cache[H, K, V] {
	switch {
	case cfg.Capacity == 0:
		cfg.Capacity = DefaultCapacity
	case cfg.Capacity < 0:
		cfg.Capacity = math.MaxInt
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Cache[H, K, V]{
		capacity: cfg.Capacity,
		release:  cfg.Release,
		handles:  make(map[H]*lru.Cache[K, V]),
		log:      cfg.Logger,
	}
}

// entries returns the LRU for h, creating it when create is set.
func (c *Cache[H, K, V]) entries(h H, create bool) (*lru.Cache[K, V], error) {
	if l, ok := c.handles[h]; ok || !create {
		return l, nil
	}
	l, err := lru.NewWithEvict[K, V](c.capacity, func(k K, v V) {
		c.releases.Add(1)
		if c.release != nil {
			c.release(h, k, v)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "handlecache: new handle")
	}
	c.handles[h] = l
	return l, nil
}

// Get returns the value cached for k under h.
func (c *Cache[H, K, V]) Get(h H, k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _ := c.entries(h, false)
	if l == nil {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	v, ok := l.Get(k)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the value cached for k under h, calling create to
// make it on a miss. A failed create caches nothing.
//
// create runs with the cache lock held; keep it short and do not call
// back into the cache from it.
func (c *Cache[H, K, V]) GetOrCreate(h H, k K, create func() (V, error)) (V, error) {
	var zero V
	c.mu.Lock()
	defer c.mu.Unlock()
	l, err := c.entries(h, true)
	if err != nil {
		return zero, err
	}
	if v, ok := l.Get(k); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)
	v, err := create()
	if err != nil {
		return zero, errors.Wrapf(err, "handlecache: create %v", k)
	}
	l.Add(k, v)
	return v, nil
}

// Remove releases the entry for k under h. It reports whether one existed.
func (c *Cache[H, K, V]) Remove(h H, k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _ := c.entries(h, false)
	if l == nil {
		return false
	}
	return l.Remove(k)
}

// Len returns the number of entries cached under h.
func (c *Cache[H, K, V]) Len(h H) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, _ := c.entries(h, false)
	if l == nil {
		return 0
	}
	return l.Len()
}

// Release tears down every entry cached under h and forgets h.
// It returns the number of entries released.
func (c *Cache[H, K, V]) Release(h H) int {
	c.mu.Lock()
	l, ok := c.handles[h]
	delete(c.handles, h)
	c.mu.Unlock()
	if !ok {
		return 0
	}
	n := l.Len()
	l.Purge()
	if ce := c.log.Check(zap.DebugLevel, "handle released"); ce != nil {
		ce.Write(zap.Int("entries", n))
	}
	return n
}

// Close releases every handle.
func (c *Cache[H, K, V]) Close() {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[H]*lru.Cache[K, V])
	c.mu.Unlock()
	for _, l := range handles {
		l.Purge()
	}
	c.log.Debug("cache closed", zap.Int("handles", len(handles)))
}

// Stats returns current cache statistics.
func (c *Cache[H, K, V]) Stats() Stats {
	c.mu.Lock()
	n := len(c.handles)
	c.mu.Unlock()
	return Stats{
		Handles:  n,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Releases: c.releases.Load(),
	}
}
