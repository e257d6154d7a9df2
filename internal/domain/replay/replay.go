// Package replay keeps a bounded in-memory buffer of recently emitted
// events so late-connecting clients can catch up.
package replay

import (
	"sync"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

const defaultCapacity = 500

// Order selects the direction of List results.
type Order int

const (
	// OrderAscending returns events oldest first.
	OrderAscending Order = iota
	// OrderDescending returns events newest first.
	OrderDescending
)

// Buffer is a fixed-capacity event buffer. When full, adding a new event
// evicts the oldest one.
type Buffer struct {
	mu       sync.RWMutex
	events   []model.GoalEvent
	capacity int
}

// Option applies a configuration option to the Buffer.
type Option func(*Buffer)

// WithCapacity sets the maximum number of retained events.
func WithCapacity(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// NewBuffer constructs a Buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add appends an event, evicting the oldest one when at capacity.
func (b *Buffer) Add(ev model.GoalEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, ev)
	if len(b.events) > b.capacity {
		b.events = b.events[len(b.events)-b.capacity:]
	}
	metrics.UpdateReplaySize(len(b.events))
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// List returns up to limit buffered events in the given order. A limit of
// zero or less returns all buffered events.
func (b *Buffer) List(limit int, order Order) []model.GoalEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.events)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]model.GoalEvent, limit)
	if order == OrderDescending {
		for i := 0; i < limit; i++ {
			out[i] = b.events[n-1-i]
		}
		return out
	}
	copy(out, b.events[n-limit:])
	return out
}
