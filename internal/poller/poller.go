// Package poller drives the fetch cycle: poll the provider on an interval,
// drop duplicates, enrich fresh events and hand them to the broadcaster,
// replay buffer and store. A failing tick never stops the loop.
package poller

import (
	"context"
	"errors"
	"time"

	"github.com/goalfeed/videprinter/internal/adapters/bus"
	"github.com/goalfeed/videprinter/internal/adapters/provider"
	"github.com/goalfeed/videprinter/internal/adapters/repository"
	"github.com/goalfeed/videprinter/internal/domain/dedupe"
	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/replay"
	"github.com/goalfeed/videprinter/pkg/logger"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

const defaultInterval = 30 * time.Second

// Fetcher supplies one cycle's worth of goal events.
type Fetcher interface {
	FetchGoals(ctx context.Context) ([]model.GoalEvent, error)
}

// Enricher refreshes roster data and annotates events.
type Enricher interface {
	UpdateIfStale(ctx context.Context)
	Enhance(events []model.GoalEvent) []model.GoalEvent
}

// Publisher delivers messages to connected subscribers.
type Publisher interface {
	Publish(msg bus.Message)
}

// Poller runs the periodic fetch loop.
type Poller struct {
	fetcher  Fetcher
	cache    dedupe.Cache
	enricher Enricher
	hub      Publisher
	replay   *replay.Buffer
	// store is nil when persistence is disabled.
	store repository.Store

	interval time.Duration
	// quietStart and quietEnd are local hours; -1 disables quiet hours.
	quietStart int
	quietEnd   int
	now        func() time.Time
	log        logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Option applies a configuration option to the Poller.
type Option func(*Poller)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithQuietHours suppresses polling between the given local hours. The
// window wraps midnight when start is later than end. Pass -1 for either
// value to disable.
func WithQuietHours(start, end int) Option {
	return func(p *Poller) {
		p.quietStart = start
		p.quietEnd = end
	}
}

// WithStore sets the persistence store.
func WithStore(store repository.Store) Option {
	return func(p *Poller) {
		p.store = store
	}
}

// WithClock sets the time source used for quiet-hours checks.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// New constructs a Poller.
func New(fetcher Fetcher, cache dedupe.Cache, enricher Enricher, hub Publisher, buffer *replay.Buffer, opts ...Option) *Poller {
	p := &Poller{
		fetcher:    fetcher,
		cache:      cache,
		enricher:   enricher,
		hub:        hub,
		replay:     buffer,
		interval:   defaultInterval,
		quietStart: -1,
		quietEnd:   -1,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("poller")
	}
	return p
}

// Start launches the poll loop. The first tick runs immediately; each
// subsequent tick is scheduled only after the previous one finished, so a
// slow cycle never overlaps the next.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		for {
			p.Tick(ctx)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.interval):
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Tick runs one poll cycle.
func (p *Poller) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPollError()
			p.log.Error(ctx, "poll tick panicked", logger.Any("panic", r))
		}
	}()

	if p.inQuietHours() {
		metrics.RecordQuietSkip()
		p.log.Debug(ctx, "quiet hours, skipping poll")
		return
	}

	metrics.RecordPollTick()
	started := p.now()
	defer func() {
		metrics.RecordPollDuration(float64(time.Since(started).Milliseconds()))
	}()

	p.enricher.UpdateIfStale(ctx)

	events, err := p.fetcher.FetchGoals(ctx)
	if err != nil {
		if errors.Is(err, provider.ErrQuotaExhausted) {
			p.log.Debug(ctx, "request quota exhausted, skipping poll")
			return
		}
		metrics.RecordPollError()
		p.log.Warn(ctx, "fetch cycle failed", logger.Error(err))
		return
	}

	fresh := p.dropKnown(ctx, events)
	if len(fresh) == 0 {
		return
	}

	fresh = p.enricher.Enhance(fresh)
	for _, ev := range fresh {
		p.cache.Add(ev.ID)
		p.hub.Publish(bus.Message{Topic: bus.TopicGoal, Payload: ev})
		p.replay.Add(ev)
		metrics.RecordGoalEmitted()
	}
	p.log.Info(ctx, "emitted goal events", logger.Int("count", len(fresh)))

	p.persist(ctx, fresh)
}

// dropKnown filters out events already seen by the cache or the store.
func (p *Poller) dropKnown(ctx context.Context, events []model.GoalEvent) []model.GoalEvent {
	var candidates []model.GoalEvent
	var ids []string
	for _, ev := range events {
		if p.cache.Has(ev.ID) {
			metrics.RecordDuplicateSkipped()
			continue
		}
		candidates = append(candidates, ev)
		ids = append(ids, ev.ID)
	}
	if len(candidates) == 0 || p.store == nil {
		return candidates
	}

	stored, err := p.store.ExistingIDs(ctx, ids)
	if err != nil {
		// The cache already filtered this process's emissions; treat the
		// store as empty rather than drop the batch.
		p.log.Warn(ctx, "stored id lookup failed", logger.Error(err))
		return candidates
	}

	fresh := candidates[:0]
	for _, ev := range candidates {
		if _, ok := stored[ev.ID]; ok {
			metrics.RecordDuplicateSkipped()
			p.cache.Add(ev.ID)
			continue
		}
		fresh = append(fresh, ev)
	}
	return fresh
}

func (p *Poller) persist(ctx context.Context, events []model.GoalEvent) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveEvents(ctx, events); err != nil {
		metrics.RecordPersistError()
		p.log.Warn(ctx, "persisting events failed", logger.Error(err))
	}
}

func (p *Poller) inQuietHours() bool {
	if p.quietStart < 0 || p.quietEnd < 0 || p.quietStart == p.quietEnd {
		return false
	}
	hour := p.now().Hour()
	if p.quietStart > p.quietEnd {
		// Window wraps midnight, e.g. 23 to 7.
		return hour >= p.quietStart || hour < p.quietEnd
	}
	return hour >= p.quietStart && hour < p.quietEnd
}
