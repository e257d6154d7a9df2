package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/goalfeed/videprinter/internal/domain/model"
)

var mockFixtures = []struct {
	home, away string
}{
	{"Arsenal", "Chelsea"},
	{"Leeds United", "Sheffield Wednesday"},
	{"Bristol City", "Blackpool"},
	{"Plymouth Argyle", "Exeter City"},
}

var mockScorers = []string{
	"Smith", "Jones", "Fletcher", "O'Brien", "Keane", "Taylor",
}

// Mock is a synthetic source for local development. Roughly one call in
// five produces a new goal in one of a small set of running fixtures.
type Mock struct {
	mu      sync.Mutex
	rng     *rand.Rand
	minute  int
	matches []model.RawMatch
}

// NewMock constructs a Mock seeded from the given value.
func NewMock(seed int64) *Mock {
	m := &Mock{rng: rand.New(rand.NewSource(seed)), minute: 1}
	for i, f := range mockFixtures {
		m.matches = append(m.matches, model.RawMatch{
			ID:              fmt.Sprintf("mock-%d", i+1),
			CompetitionID:   "77",
			CompetitionName: "Mock League",
			HomeName:        f.home,
			AwayName:        f.away,
			Score:           "0 - 0",
			Status:          "IN PLAY",
		})
	}
	return m
}

// LiveMatches returns the running fixtures, occasionally adding a new goal
// to one of them.
func (m *Mock) LiveMatches(_ context.Context) ([]model.RawMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.minute++
	if m.rng.Intn(5) == 0 {
		m.addGoal()
	}

	out := make([]model.RawMatch, len(m.matches))
	copy(out, m.matches)
	return out, nil
}

// MatchEvents returns the inline events of the fixture.
func (m *Mock) MatchEvents(_ context.Context, match model.RawMatch) ([]model.RawGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, candidate := range m.matches {
		if candidate.ID == match.ID {
			out := make([]model.RawGoal, len(candidate.Events))
			copy(out, candidate.Events)
			return out, nil
		}
	}
	return nil, nil
}

func (m *Mock) addGoal() {
	idx := m.rng.Intn(len(m.matches))
	match := &m.matches[idx]

	side := "home"
	if m.rng.Intn(2) == 1 {
		side = "away"
	}
	home, away := tallyFromEvents(match.Events)
	if side == "home" {
		home++
	} else {
		away++
	}
	score := fmt.Sprintf("%d - %d", home, away)

	match.Events = append(match.Events, model.RawGoal{
		ID:     fmt.Sprintf("%s-g%d", match.ID, len(match.Events)+1),
		Time:   fmt.Sprintf("%d", m.minute),
		Scorer: mockScorers[m.rng.Intn(len(mockScorers))],
		Score:  score,
		Side:   side,
		Kind:   "goal",
		Sort:   len(match.Events) + 1,
	})
	match.Score = score
}

func tallyFromEvents(events []model.RawGoal) (home, away int) {
	for _, e := range events {
		if e.Side == "home" {
			home++
		} else {
			away++
		}
	}
	return home, away
}
