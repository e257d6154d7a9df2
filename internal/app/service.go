// Package app assembles the service: storage, quota, provider, enrichment,
// broadcasting and the poll loop, behind the surface the HTTP layer uses.
package app

import (
	"context"
	"time"

	"github.com/goalfeed/videprinter/internal/adapters/bus"
	"github.com/goalfeed/videprinter/internal/adapters/http/api"
	"github.com/goalfeed/videprinter/internal/adapters/provider"
	"github.com/goalfeed/videprinter/internal/adapters/repository"
	"github.com/goalfeed/videprinter/internal/adapters/roster"
	"github.com/goalfeed/videprinter/internal/config"
	"github.com/goalfeed/videprinter/internal/domain/dedupe"
	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/normalize"
	"github.com/goalfeed/videprinter/internal/domain/quota"
	"github.com/goalfeed/videprinter/internal/domain/replay"
	"github.com/goalfeed/videprinter/internal/enrich"
	"github.com/goalfeed/videprinter/internal/poller"
	"github.com/goalfeed/videprinter/pkg/logger"
)

// Service owns the component graph and its lifecycle.
type Service struct {
	cfg *config.Config
	log logger.Logger

	store     repository.Store
	tracker   *quota.Tracker
	hub       *bus.Hub
	replayBuf *replay.Buffer
	cache     dedupe.Cache
	enricher  *enrich.Service
	poll      *poller.Poller

	// source overrides the configured provider source when set, for tests.
	source provider.Source
	// storeOverride replaces the configured store when set, for tests.
	storeOverride repository.Store

	startedAt time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSource injects a provider source, bypassing the configured one.
func WithSource(src provider.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore injects a store, bypassing the configured one.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.storeOverride = store
	}
}

// New constructs a Service from configuration. Components that need a
// context are built in Start.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("app")
	}
	return s
}

// Start builds the component graph and launches the background loops.
func (s *Service) Start(ctx context.Context) error {
	cfg := s.cfg

	store, err := s.buildStore(ctx)
	if err != nil {
		return err
	}
	s.store = store

	s.tracker = quota.NewTracker(
		quota.WithStore(store),
		quota.WithDailyCap(cfg.DailyRequestCap),
	)

	source := s.source
	if source == nil {
		source, err = provider.NewSource(cfg.Provider, provider.ClientConfig{
			BaseURL: cfg.ProviderBaseURL,
			Key:     cfg.ProviderKey,
			Secret:  cfg.ProviderSecret,
		})
		if err != nil {
			return err
		}
	}

	adapter := provider.NewAdapter(source, s.tracker,
		normalize.New(normalize.WithSource(cfg.Provider)),
		provider.WithCompetitions(cfg.Competitions),
	)

	s.cache = dedupe.NewFIFO(dedupe.WithCapacity(cfg.DedupeSize))
	s.replayBuf = replay.NewBuffer(replay.WithCapacity(cfg.ReplaySize))

	s.hub = bus.NewHub(
		bus.WithHeartbeatInterval(time.Duration(cfg.HeartbeatIntervalMS) * time.Millisecond),
	)
	s.hub.Start(ctx)

	if cfg.RosterEnabled {
		s.enricher = enrich.NewService(
			roster.NewClient(cfg.RosterBaseURL),
			enrich.WithCooldown(time.Duration(cfg.RosterRefreshMS)*time.Millisecond),
		)
	}

	pollOpts := []poller.Option{
		poller.WithInterval(time.Duration(cfg.PollIntervalMS) * time.Millisecond),
		poller.WithQuietHours(cfg.QuietHoursStart, cfg.QuietHoursEnd),
	}
	if cfg.PersistenceEnabled {
		pollOpts = append(pollOpts, poller.WithStore(store))
	}
	s.poll = poller.New(adapter, s.cache, s.pollerEnricher(), s.hub, s.replayBuf, pollOpts...)
	s.poll.Start(ctx)

	s.startedAt = time.Now()
	s.log.Info(ctx, "service started",
		logger.String("provider", cfg.Provider),
		logger.Int("pollIntervalMs", cfg.PollIntervalMS),
		logger.Bool("persistence", cfg.PersistenceEnabled),
		logger.Bool("roster", cfg.RosterEnabled),
	)
	return nil
}

// Stop halts the background loops and releases resources.
func (s *Service) Stop(ctx context.Context) {
	if s.poll != nil {
		s.poll.Stop()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn(ctx, "closing store failed", logger.Error(err))
		}
	}
	s.log.Info(ctx, "service stopped")
}

func (s *Service) buildStore(ctx context.Context) (repository.Store, error) {
	if s.storeOverride != nil {
		return s.storeOverride, nil
	}
	if s.cfg.PersistenceEnabled {
		return repository.NewPostgresStore(ctx, s.cfg.DatabaseURL)
	}
	return repository.NewMemoryStore(), nil
}

// pollerEnricher returns the enrichment hook for the poll loop, a
// passthrough when roster enrichment is disabled.
func (s *Service) pollerEnricher() poller.Enricher {
	if s.enricher != nil {
		return s.enricher
	}
	return passthroughEnricher{}
}

type passthroughEnricher struct{}

func (passthroughEnricher) UpdateIfStale(context.Context) {}

func (passthroughEnricher) Enhance(events []model.GoalEvent) []model.GoalEvent { return events }

// History returns recently emitted events, newest first. With persistence
// enabled it reads the store, surviving restarts; otherwise it serves the
// in-memory replay buffer.
func (s *Service) History(ctx context.Context, limit int) ([]model.GoalEvent, error) {
	if s.cfg.PersistenceEnabled {
		return s.store.RecentEvents(ctx, limit)
	}
	return s.replayBuf.List(limit, replay.OrderDescending), nil
}

// Subscribe registers a live event subscriber.
func (s *Service) Subscribe() bus.Subscription {
	return s.hub.Subscribe()
}

// Unsubscribe removes a live event subscriber.
func (s *Service) Unsubscribe(id string) {
	s.hub.Unsubscribe(id)
}

// FantasyStatus reports the enrichment state. Zero value when roster
// enrichment is disabled.
func (s *Service) FantasyStatus() enrich.Status {
	if s.enricher == nil {
		return enrich.Status{}
	}
	return s.enricher.Status()
}

// Stats reports the operational snapshot.
func (s *Service) Stats(ctx context.Context) api.Stats {
	return api.Stats{
		Provider:       s.cfg.Provider,
		Subscribers:    s.hub.SubscriberCount(),
		ReplaySize:     s.replayBuf.Len(),
		QuotaRemaining: s.tracker.RemainingToday(ctx),
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
	}
}
