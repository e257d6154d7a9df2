// Package quota enforces the daily external-request budget with state that
// survives restarts via a collaborator store.
package quota

import (
	"context"
	"sync"
	"time"

	"github.com/goalfeed/videprinter/pkg/logger"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

// Unbounded is returned by RemainingToday when no cap is configured.
const Unbounded = -1

const dateKeyLayout = "2006-01-02"

// State is the persisted counter document.
type State struct {
	DateKey string `json:"dateKey"`
	Count   int    `json:"count"`
}

// Store persists the counter between process runs.
type Store interface {
	// LoadQuota returns the stored state and whether one existed.
	LoadQuota(ctx context.Context) (State, bool, error)

	// SaveQuota writes the state back.
	SaveQuota(ctx context.Context, state State) error
}

// Tracker counts external requests made during the current UTC calendar day.
// Day rollover is detected lazily on each call. The count is monotonically
// non-decreasing within a day and resets to zero only at day boundaries.
type Tracker struct {
	mu     sync.Mutex
	store  Store
	cap    int
	now    func() time.Time
	state  State
	loaded bool
	log    logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithStore sets the collaborator that persists the counter.
func WithStore(store Store) Option {
	return func(t *Tracker) {
		t.store = store
	}
}

// WithDailyCap sets the daily request cap. Zero or negative means unbounded.
func WithDailyCap(cap int) Option {
	return func(t *Tracker) {
		t.cap = cap
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// NewTracker constructs a Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Get().Named("quota")
	}
	return t
}

// CanMakeExternalRequest reports whether another request fits today's budget.
func (t *Tracker) CanMakeExternalRequest(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureLoaded(ctx)
	t.rollover(ctx)
	if t.cap <= 0 {
		return true
	}
	return t.state.Count < t.cap
}

// NoteExternalRequest records one initiated request and persists the counter.
// Returns the count after the increment.
func (t *Tracker) NoteExternalRequest(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureLoaded(ctx)
	t.rollover(ctx)
	t.state.Count++
	t.persist(ctx)
	metrics.UpdateQuotaRemaining(t.remainingLocked())
	return t.state.Count
}

// RemainingToday returns the requests left today, or Unbounded when no cap
// is configured.
func (t *Tracker) RemainingToday(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureLoaded(ctx)
	t.rollover(ctx)
	return t.remainingLocked()
}

func (t *Tracker) remainingLocked() int {
	if t.cap <= 0 {
		return Unbounded
	}
	remaining := t.cap - t.state.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ensureLoaded reads the persisted state once, on first use.
// Must be called with t.mu held.
func (t *Tracker) ensureLoaded(ctx context.Context) {
	if t.loaded {
		return
	}
	t.loaded = true
	t.state.DateKey = t.today()

	if t.store == nil {
		return
	}
	stored, ok, err := t.store.LoadQuota(ctx)
	if err != nil {
		t.log.Warn(ctx, "loading persisted quota failed; starting fresh", logger.Error(err))
		return
	}
	if !ok {
		t.persist(ctx)
		return
	}
	if stored.DateKey == t.state.DateKey {
		t.state.Count = stored.Count
	} else {
		// Stored state belongs to a previous day.
		t.persist(ctx)
	}
}

// rollover resets the counter when the UTC calendar day has advanced.
// Must be called with t.mu held.
func (t *Tracker) rollover(ctx context.Context) {
	today := t.today()
	if t.state.DateKey == today {
		return
	}
	t.state = State{DateKey: today, Count: 0}
	t.persist(ctx)
}

// persist writes the state back, best effort. Must be called with t.mu held.
func (t *Tracker) persist(ctx context.Context) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveQuota(ctx, t.state); err != nil {
		t.log.Warn(ctx, "persisting quota failed", logger.Error(err))
	}
}

func (t *Tracker) today() string {
	return t.now().UTC().Format(dateKeyLayout)
}
