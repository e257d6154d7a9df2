// Package dedupe keeps a bounded set of recently-seen event ids.
package dedupe

// Option applies a configuration option to the FIFO cache.
type Option func(*fifoCache)

// WithCapacity sets the maximum number of ids to keep. Values below one are
// ignored and the default applies.
func WithCapacity(capacity int) Option {
	return func(c *fifoCache) {
		if capacity > 0 {
			c.capacity = capacity
		}
	}
}
