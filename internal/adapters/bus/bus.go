// Package bus fans emitted events out to connected subscribers and
// publishes periodic heartbeats so idle connections stay alive.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goalfeed/videprinter/pkg/logger"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

// Topics carried by the hub.
const (
	TopicGoal      = "goal"
	TopicHeartbeat = "heartbeat"
)

const (
	defaultHeartbeatInterval = 20 * time.Second
	subscriberBufferSize     = 16
)

// Message is one item delivered to every subscriber.
type Message struct {
	Topic   string
	Payload any
}

// Heartbeat is the payload published on TopicHeartbeat.
type Heartbeat struct {
	Timestamp string `json:"timestamp"`
}

// Subscription is one subscriber's handle on the hub. Receive from C until
// it is closed by Unsubscribe or hub shutdown.
type Subscription struct {
	ID string
	C  <-chan Message
}

type subscriber struct {
	ch chan Message
}

// Hub delivers published messages to all current subscribers. Delivery is
// best effort: a subscriber whose buffer is full misses that message rather
// than blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool

	heartbeatInterval time.Duration
	now               func() time.Time
	log               logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithHeartbeatInterval sets the interval between heartbeat messages.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeatInterval = d
		}
	}
}

// WithClock sets the time source used for heartbeat timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHub constructs a Hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subscribers:       make(map[string]*subscriber),
		heartbeatInterval: defaultHeartbeatInterval,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get().Named("bus")
	}
	return h
}

// Start launches the heartbeat publisher. It returns immediately.
func (h *Hub) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(h.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Publish(Message{
					Topic:   TopicHeartbeat,
					Payload: Heartbeat{Timestamp: h.now().UTC().Format(time.RFC3339)},
				})
			}
		}
	}()
}

// Subscribe registers a new subscriber and returns its handle.
func (h *Hub) Subscribe() Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Message, subscriberBufferSize)
	id := uuid.NewString()
	if h.closed {
		close(ch)
		return Subscription{ID: id, C: ch}
	}
	h.subscribers[id] = &subscriber{ch: ch}
	metrics.UpdateSubscriberCount(len(h.subscribers))
	return Subscription{ID: id, C: ch}
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(sub.ch)
	metrics.UpdateSubscriberCount(len(h.subscribers))
}

// Publish delivers a message to all current subscribers.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for id, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
		default:
			h.log.Warn(context.Background(), "subscriber buffer full, dropping message",
				logger.String("subscriber", id),
				logger.String("topic", msg.Topic),
			)
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close stops the heartbeat publisher and closes all subscriber channels.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.ch)
	}
	metrics.UpdateSubscriberCount(0)
}
