// Package enrich annotates goal events with fantasy roster ownership.
// Enrichment is strictly best effort: events flow through unchanged when
// roster data is missing or stale.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/goalfeed/videprinter/internal/adapters/roster"
	"github.com/goalfeed/videprinter/internal/domain/match"
	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/pkg/logger"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

const defaultCooldown = 5 * time.Minute

// Fetcher supplies roster snapshots.
type Fetcher interface {
	Fetch(ctx context.Context) (roster.Payload, error)
}

// Status describes the enrichment state for the fantasy status endpoint.
type Status struct {
	LastUpdate    time.Time     `json:"lastUpdate"`
	IsUpdating    bool          `json:"isUpdating"`
	NextUpdateDue time.Time     `json:"nextUpdateDue"`
	Roster        match.Summary `json:"roster"`
}

// Service keeps a fuzzy roster index fresh and annotates events against it.
type Service struct {
	fetcher  Fetcher
	matcher  *match.Matcher
	cooldown time.Duration
	now      func() time.Time
	log      logger.Logger

	mu         sync.Mutex
	lastUpdate time.Time
	isUpdating bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCooldown sets the minimum interval between roster refreshes.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cooldown = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService constructs a Service.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		matcher:  match.NewMatcher(),
		cooldown: defaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("enrich")
	}
	return s
}

// UpdateIfStale refreshes the roster index when the cooldown has elapsed.
// Concurrent callers and callers inside the cooldown window return
// immediately. A failed refresh leaves the previous index in place.
func (s *Service) UpdateIfStale(ctx context.Context) {
	s.mu.Lock()
	if s.isUpdating || s.now().Sub(s.lastUpdate) < s.cooldown {
		s.mu.Unlock()
		return
	}
	s.isUpdating = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isUpdating = false
		s.mu.Unlock()
	}()

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordEnrichmentError()
		s.log.Warn(ctx, "roster refresh failed, keeping previous index", logger.Error(err))
		return
	}

	s.matcher.Update(payload.Players, payload.Goalkeepers)
	metrics.UpdateRosterLoaded(len(payload.Players), len(payload.Goalkeepers))

	s.mu.Lock()
	s.lastUpdate = s.now()
	s.mu.Unlock()

	summary := s.matcher.Summary()
	s.log.Info(ctx, "roster index refreshed",
		logger.Int("players", summary.PlayersLoaded),
		logger.Int("goalkeepers", summary.GoalkeepersLoaded),
		logger.Int("managers", summary.UniqueManagers),
	)
}

// Enhance annotates each event with the best roster matches for its scorer
// and conceding team. Events without matches pass through untouched.
func (s *Service) Enhance(events []model.GoalEvent) []model.GoalEvent {
	out := make([]model.GoalEvent, len(events))
	for i, ev := range events {
		out[i] = s.enhanceOne(ev)
	}
	return out
}

func (s *Service) enhanceOne(ev model.GoalEvent) model.GoalEvent {
	players := s.matcher.FindPlayerMatches(ev.Scorer.Name, ev.ScoringTeam.Name)
	if len(players) > 0 {
		best := players[0]
		ev.PotentialGoalFor = &model.GoalFor{
			Manager:    best.Entry.Manager,
			Player:     best.Entry.Name,
			Team:       best.Entry.Team,
			Confidence: best.Confidence,
			Substitute: best.Entry.Substitute,
		}
		metrics.RecordEnrichmentHit()
	} else {
		metrics.RecordEnrichmentMiss()
	}

	keepers := s.matcher.FindGoalkeeperMatches(ev.ConcedingTeam.Name)
	if len(keepers) > 0 {
		best := keepers[0]
		ev.PotentialConcedingFor = &model.ConcedingFor{
			Manager:    best.Entry.Manager,
			Team:       best.Entry.Team,
			Confidence: best.Confidence,
			Substitute: best.Entry.Substitute,
		}
	}
	return ev
}

// Status reports the current enrichment state.
func (s *Service) Status() Status {
	s.mu.Lock()
	last, updating := s.lastUpdate, s.isUpdating
	s.mu.Unlock()

	return Status{
		LastUpdate:    last,
		IsUpdating:    updating,
		NextUpdateDue: last.Add(s.cooldown),
		Roster:        s.matcher.Summary(),
	}
}
