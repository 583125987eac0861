// Package regcache keeps the registration aggregates of signed-in
// coordinators in memory so dashboard reads do not reassemble the aggregate
// from five tables on every request.
package regcache

import (
	"context"
	"sync"

	"meraki/internal/domain/registration"
)

// Loader assembles a registration aggregate from the stores.
type Loader interface {
	GetByID(ctx context.Context, id string) (registration.Registration, error)
}

// Cache is a read-through cache keyed by registration id.
// INVARIANT: a cached aggregate is never older than the last successful write
// that went through Invalidate
type Cache struct {
	mu      sync.RWMutex
	entries map[string]registration.Registration
	gens    map[string]uint64
	loader  Loader
}

// New creates an empty cache that falls back to loader on a miss.
func New(loader Loader) *Cache {
	return &Cache{
		entries: make(map[string]registration.Registration),
		gens:    make(map[string]uint64),
		loader:  loader,
	}
}

// Get returns the cached aggregate, loading and storing it on a miss.
// PRE: id is non-empty
// POST: a load error is returned unchanged and nothing is cached; a load that
// overlapped a Put or Invalidate for id is returned but not cached
func (c *Cache) Get(ctx context.Context, id string) (registration.Registration, error) {
	c.mu.RLock()
	reg, ok := c.entries[id]
	gen := c.gens[id]
	c.mu.RUnlock()
	if ok {
		return reg, nil
	}

	reg, err := c.loader.GetByID(ctx, id)
	if err != nil {
		return registration.Registration{}, err
	}
	c.mu.Lock()
	if c.gens[id] == gen {
		c.entries[id] = reg
	}
	c.mu.Unlock()
	return reg, nil
}

// Put stores an aggregate, replacing any previous copy.
// PRE: reg.ID is non-empty
func (c *Cache) Put(reg registration.Registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[reg.ID]++
	c.entries[reg.ID] = reg
}

// Invalidate evicts the aggregate so the next Get reloads it. Loads already
// running for id will not repopulate the cache.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	delete(c.entries, id)
}

// Len returns the number of cached aggregates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
