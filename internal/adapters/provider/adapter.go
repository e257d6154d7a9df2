// Package provider turns upstream feed data into canonical goal events,
// enforcing the competition allow-list and the daily request budget.
package provider

import (
	"context"
	"fmt"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/normalize"
	"github.com/goalfeed/videprinter/internal/domain/quota"
	"github.com/goalfeed/videprinter/pkg/logger"
)

// Provider names accepted by NewSource.
const (
	NameMock      = "mock"
	NameLiveScore = "live-score"
)

// Source supplies raw fixture and event data.
type Source interface {
	LiveMatches(ctx context.Context) ([]model.RawMatch, error)
	MatchEvents(ctx context.Context, m model.RawMatch) ([]model.RawGoal, error)
}

// NewSource constructs the named Source.
func NewSource(name string, cfg ClientConfig) (Source, error) {
	switch name {
	case NameMock:
		return NewMock(1), nil
	case NameLiveScore:
		return NewClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}

// Adapter orchestrates one fetch cycle: list live fixtures, filter them to
// the allowed competitions, pull per-fixture detail when needed and
// normalize everything into goal events. Every upstream call is charged
// against the daily quota.
type Adapter struct {
	source     Source
	quota      *quota.Tracker
	normalizer *normalize.Normalizer
	// allowed is the competition allow-list; empty means allow all.
	allowed map[string]struct{}
	log     logger.Logger
}

// AdapterOption applies a configuration option to the Adapter.
type AdapterOption func(*Adapter)

// WithCompetitions restricts fetching to the given competition ids.
func WithCompetitions(ids []string) AdapterOption {
	return func(a *Adapter) {
		if len(ids) == 0 {
			return
		}
		a.allowed = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			a.allowed[id] = struct{}{}
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) AdapterOption {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAdapter constructs an Adapter.
func NewAdapter(source Source, tracker *quota.Tracker, normalizer *normalize.Normalizer, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		source:     source,
		quota:      tracker,
		normalizer: normalizer,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get().Named("provider")
	}
	return a
}

// FetchGoals runs one fetch cycle and returns all goal events observed in
// allowed fixtures. A fixture whose detail fetch fails contributes no
// events; the cycle itself only fails when the fixture list cannot be
// fetched or the quota is spent.
func (a *Adapter) FetchGoals(ctx context.Context) ([]model.GoalEvent, error) {
	if !a.quota.CanMakeExternalRequest(ctx) {
		return nil, ErrQuotaExhausted
	}
	a.quota.NoteExternalRequest(ctx)

	matches, err := a.source.LiveMatches(ctx)
	if err != nil {
		return nil, err
	}

	var out []model.GoalEvent
	for _, m := range matches {
		if !a.competitionAllowed(m.CompetitionID) {
			continue
		}
		enriched, err := a.withEvents(ctx, m)
		if err != nil {
			a.log.Warn(ctx, "skipping fixture after detail fetch failure",
				logger.String("fixture", m.ID),
				logger.Error(err),
			)
			continue
		}
		out = append(out, a.normalizer.MatchGoals(enriched)...)
	}
	return out, nil
}

// withEvents pulls per-fixture detail when the score shows goals but no
// inline events arrived with the fixture list.
func (a *Adapter) withEvents(ctx context.Context, m model.RawMatch) (model.RawMatch, error) {
	if len(m.Events) > 0 {
		return m, nil
	}
	home, away, ok := normalize.ParseScore(m.Score)
	if !ok || home+away == 0 {
		return m, nil
	}

	if !a.quota.CanMakeExternalRequest(ctx) {
		return model.RawMatch{}, ErrQuotaExhausted
	}
	a.quota.NoteExternalRequest(ctx)

	events, err := a.source.MatchEvents(ctx, m)
	if err != nil {
		return model.RawMatch{}, err
	}
	m.Events = events
	return m, nil
}

func (a *Adapter) competitionAllowed(id string) bool {
	if len(a.allowed) == 0 {
		return true
	}
	_, ok := a.allowed[id]
	return ok
}
