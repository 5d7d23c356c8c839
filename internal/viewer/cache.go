package viewer

import (
	"context"
	"sync"

	"mocap-pair-viewer/internal/bvh"
)

// CachedLoader is a concurrency-safe Loader that parses each path once.
// Parsed motions are shared read-only between viewers; failures are not cached.
type CachedLoader struct {
	next Loader

	mu    sync.RWMutex
	items map[string]*bvh.Motion
}

// NewCachedLoader wraps next.
func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{
		next:  next,
		items: make(map[string]*bvh.Motion),
	}
}

// Load returns the cached motion for path, loading it on first use.
func (c *CachedLoader) Load(ctx context.Context, path string) (*bvh.Motion, error) {
	if path == "" {
		return nil, ErrNoSource
	}

	// Fast path: read lock
	c.mu.RLock()
	if m, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	m, err := c.next.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.items[path]; ok {
		return cached, nil
	}
	c.items[path] = m
	return m, nil
}

// Len returns the number of cached motions.
func (c *CachedLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
