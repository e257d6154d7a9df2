// Package dedupe keeps a bounded set of recently-seen event ids so the same
// goal is never delivered twice within the window.
package dedupe

import (
	"sync"
)

// Default cache configuration constants.
const (
	defaultCapacity = 1000
)

// Cache answers membership for recently-seen event ids.
//
// No false negatives occur within the window; ids older than the window are
// forgotten (long-term uniqueness is the persistence layer's job).
type Cache interface {
	// Has reports whether id is in the window.
	Has(id string) bool

	// Add records id, evicting the oldest entry when the cache is full.
	// Adding an id that is already present is a no-op.
	Add(id string)

	// Len returns the current number of tracked ids.
	Len() int
}

// fifoCache implements Cache with a map for membership and a queue for
// insertion order. Eviction is strictly FIFO.
type fifoCache struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	queue    []string
	capacity int
}

// NewFIFO creates a FIFO cache with configuration options.
func NewFIFO(opts ...Option) Cache {
	c := &fifoCache{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.seen = make(map[string]struct{}, c.capacity)
	return c
}

func (c *fifoCache) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

func (c *fifoCache) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return
	}
	c.seen[id] = struct{}{}
	c.queue = append(c.queue, id)
	if len(c.queue) > c.capacity {
		oldest := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.seen, oldest)
	}
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
