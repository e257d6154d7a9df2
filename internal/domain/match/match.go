// Package match provides fuzzy lookup of players and goalkeepers against a
// loaded roster. Candidate names are normalized and token-sorted before
// scoring so that "Fletcher, Ashley" and "Ashley Fletcher" compare equal.
package match

import (
	"sort"
	"strings"
	"sync"

	"github.com/goalfeed/videprinter/internal/domain/model"
)

const (
	playerDistanceThreshold   = 0.6
	teamDistanceThreshold     = 0.3
	playerConfidenceFloor     = 0.5
	goalkeeperConfidenceFloor = 0.7
	exactTeamHintMaxRunes     = 4
)

// Candidate is a roster entry scored against a query.
type Candidate struct {
	Entry      model.RosterEntry
	Distance   float64
	Confidence float64
}

// Summary describes the currently loaded roster.
type Summary struct {
	PlayersLoaded     int `json:"playersLoaded"`
	GoalkeepersLoaded int `json:"goalkeepersLoaded"`
	UniqueManagers    int `json:"uniqueManagers"`
}

type indexedEntry struct {
	entry      model.RosterEntry
	rawLower   string
	normalized string
	tokenKey   string
	teamKey    string
}

// Matcher indexes a roster snapshot and answers fuzzy queries against it.
// Update replaces the whole index atomically; queries see either the old or
// the new snapshot, never a mix.
type Matcher struct {
	mu          sync.RWMutex
	players     []indexedEntry
	goalkeepers []indexedEntry
	summary     Summary
}

// NewMatcher constructs an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Update replaces the indexed roster wholesale.
func (m *Matcher) Update(players, goalkeepers []model.RosterEntry) {
	indexedPlayers := indexEntries(players)
	indexedKeepers := indexEntries(goalkeepers)

	managers := make(map[string]struct{})
	for _, p := range players {
		if p.Manager != "" {
			managers[p.Manager] = struct{}{}
		}
	}
	for _, g := range goalkeepers {
		if g.Manager != "" {
			managers[g.Manager] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = indexedPlayers
	m.goalkeepers = indexedKeepers
	m.summary = Summary{
		PlayersLoaded:     len(players),
		GoalkeepersLoaded: len(goalkeepers),
		UniqueManagers:    len(managers),
	}
}

// Summary reports how much roster data is loaded.
func (m *Matcher) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// FindPlayerMatches returns non-substitute roster players whose names score
// within the player threshold against the scorer text, best match first.
// A non-empty teamHint restricts candidates to entries whose team contains
// the hint; hints shorter than four runes require an exact team match.
func (m *Matcher) FindPlayerMatches(scorer, teamHint string) []Candidate {
	m.mu.RLock()
	entries := m.players
	m.mu.RUnlock()

	query := newQuery(scorer)
	if query.empty() {
		return nil
	}
	hint := normalizeName(teamHint)

	var out []Candidate
	for _, e := range entries {
		if e.entry.Substitute {
			continue
		}
		if hint != "" && !teamMatchesHint(e.teamKey, hint) {
			continue
		}
		dist := query.distance(e)
		if dist > playerDistanceThreshold {
			continue
		}
		conf := 1 - dist
		if conf <= playerConfidenceFloor {
			continue
		}
		out = append(out, Candidate{Entry: e.entry, Distance: dist, Confidence: conf})
	}
	sortCandidates(out)
	return out
}

// FindGoalkeeperMatches returns goalkeepers rostered for teams matching the
// given team name within the team threshold, best match first.
func (m *Matcher) FindGoalkeeperMatches(team string) []Candidate {
	m.mu.RLock()
	entries := m.goalkeepers
	m.mu.RUnlock()

	query := newQuery(team)
	if query.empty() {
		return nil
	}

	var out []Candidate
	for _, e := range entries {
		if e.entry.Substitute {
			continue
		}
		dist := query.distanceToTeam(e)
		if dist > teamDistanceThreshold {
			continue
		}
		conf := 1 - dist
		if conf <= goalkeeperConfidenceFloor {
			continue
		}
		out = append(out, Candidate{Entry: e.entry, Distance: dist, Confidence: conf})
	}
	sortCandidates(out)
	return out
}

func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Distance < cs[j].Distance
	})
}

// teamMatchesHint accepts containment in either direction, so a short roster
// team name still matches a longer feed team name and vice versa. Either
// string being shorter than four runes forces an exact comparison.
func teamMatchesHint(teamKey, hint string) bool {
	if len([]rune(hint)) < exactTeamHintMaxRunes || len([]rune(teamKey)) < exactTeamHintMaxRunes {
		return teamKey == hint
	}
	return strings.Contains(teamKey, hint) || strings.Contains(hint, teamKey)
}

func indexEntries(entries []model.RosterEntry) []indexedEntry {
	out := make([]indexedEntry, 0, len(entries))
	for _, e := range entries {
		norm := normalizeName(e.Name)
		out = append(out, indexedEntry{
			entry:      e,
			rawLower:   strings.ToLower(strings.TrimSpace(e.Name)),
			normalized: norm,
			tokenKey:   tokenSort(norm),
			teamKey:    normalizeName(e.Team),
		})
	}
	return out
}

// query holds the precomputed comparison keys for one lookup string.
type query struct {
	rawLower string
	tokenKey string
}

func newQuery(s string) query {
	norm := normalizeName(s)
	return query{
		rawLower: strings.ToLower(strings.TrimSpace(s)),
		tokenKey: tokenSort(norm),
	}
}

func (q query) empty() bool {
	return q.tokenKey == "" && q.rawLower == ""
}

// distance scores a player entry as the best of the raw-lowercase and
// token-sorted comparisons. The token form catches reordered names while the
// raw form keeps already-identical strings at zero.
func (q query) distance(e indexedEntry) float64 {
	d := normalizedLevenshtein(q.tokenKey, e.tokenKey)
	if raw := normalizedLevenshtein(q.rawLower, e.rawLower); raw < d {
		d = raw
	}
	return d
}

func (q query) distanceToTeam(e indexedEntry) float64 {
	return normalizedLevenshtein(q.tokenKey, e.teamKey)
}
