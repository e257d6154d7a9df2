// Package normalize converts raw provider match records into canonical goal
// events. It does no I/O and keeps no state between calls.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

const (
	// unknownName labels a scorer or team the provider left blank or that
	// could not be inferred.
	unknownName = "Unknown"

	// ownGoalSuffix tags own goals on the scorer label.
	ownGoalSuffix = " OG"

	// fingerprintLen is the hex length of derived event ids.
	fingerprintLen = 16
)

// side is the inferred scoring side of a raw goal.
type side int

const (
	sideUnknown side = iota
	sideHome
	sideAway
)

var scorePattern = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)

// Normalizer converts raw matches into goal events.
type Normalizer struct {
	source string
	now    func() time.Time
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithSource sets the provenance tag stamped on produced events.
func WithSource(source string) Option {
	return func(n *Normalizer) {
		if source != "" {
			n.source = source
		}
	}
}

// WithClock sets the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// New constructs a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		source: "live-score",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ParseScore parses a score string of the form "<int> - <int>".
// Malformed or missing strings yield (0, 0, false).
func ParseScore(s string) (home, away int, ok bool) {
	groups := scorePattern.FindStringSubmatch(s)
	if groups == nil {
		return 0, 0, false
	}
	home, _ = strconv.Atoi(groups[1])
	away, _ = strconv.Atoi(groups[2])
	return home, away, true
}

// MatchGoals converts every raw goal of one match into canonical events,
// preserving causal score progression. A raw event whose scoring side cannot
// be determined and which carries no explicit score is skipped; nothing in a
// single match aborts the batch.
func (n *Normalizer) MatchGoals(m model.RawMatch) []model.GoalEvent {
	if len(m.Events) == 0 {
		return nil
	}

	raws := make([]model.RawGoal, len(m.Events))
	copy(raws, m.Events)
	sortRawGoals(raws)

	var (
		out       []model.GoalEvent
		tallyHome int
		tallyAway int
	)

	for i := range raws {
		raw := raws[i]
		expHome, expAway, hasExplicit := ParseScore(raw.Score)

		s := markerSide(raw.Side)
		if s == sideUnknown && hasExplicit {
			s = tallySide(tallyHome, tallyAway, expHome, expAway)
		}
		if s == sideUnknown {
			s = scorerTextSide(raw.Scorer, m.HomeName, m.AwayName)
		}
		if s == sideUnknown && !hasExplicit {
			// Cannot safely count this goal on either side.
			metrics.RecordEventDiscarded()
			continue
		}

		if hasExplicit {
			// Explicit score wins; the tally is reset to it even when
			// upstream data is inconsistent with the running count.
			tallyHome, tallyAway = expHome, expAway
		} else {
			switch s {
			case sideHome:
				tallyHome++
			case sideAway:
				tallyAway++
			}
		}

		scoring, conceding := teamsFor(s, m)
		label := scorerLabel(raw)

		ev := model.GoalEvent{
			ID:            eventID(m.ID, raw),
			FixtureID:     m.ID,
			Competition:   m.CompetitionName,
			UTCTimestamp:  n.now().UTC(),
			Minute:        parseMinute(raw.Time),
			ScoringTeam:   model.TeamRef{Name: scoring},
			ConcedingTeam: model.TeamRef{Name: conceding},
			Scorer: model.PersonRef{
				Name:           label,
				NormalizedName: strings.ToLower(label),
			},
			Phase:  phaseFor(m.Status),
			Source: n.source,
		}
		h, a := tallyHome, tallyAway
		ev.ScoreAfterEvent = model.Score{Home: &h, Away: &a}
		out = append(out, ev)
	}
	return out
}

// sortRawGoals orders events ascending by an explicit sort key when both
// carry one, else by match clock.
func sortRawGoals(raws []model.RawGoal) {
	sort.SliceStable(raws, func(i, j int) bool {
		a, b := raws[i], raws[j]
		if a.Sort != 0 && b.Sort != 0 {
			return a.Sort < b.Sort
		}
		am, bm := parseMinute(a.Time), parseMinute(b.Time)
		if am != nil && bm != nil {
			return *am < *bm
		}
		return false
	})
}

func markerSide(marker string) side {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "home", "h", "1":
		return sideHome
	case "away", "a", "2":
		return sideAway
	default:
		return sideUnknown
	}
}

// tallySide compares an explicit event score against the running tally.
// Only a delta on exactly one side identifies the scorer's team.
func tallySide(tallyHome, tallyAway, expHome, expAway int) side {
	dh := expHome - tallyHome
	da := expAway - tallyAway
	switch {
	case dh > 0 && da <= 0:
		return sideHome
	case da > 0 && dh <= 0:
		return sideAway
	default:
		return sideUnknown
	}
}

func scorerTextSide(scorer, homeName, awayName string) side {
	if scorer == "" {
		return sideUnknown
	}
	if homeName != "" && strings.Contains(scorer, homeName) {
		return sideHome
	}
	if awayName != "" && strings.Contains(scorer, awayName) {
		return sideAway
	}
	return sideUnknown
}

func teamsFor(s side, m model.RawMatch) (scoring, conceding string) {
	switch s {
	case sideHome:
		return m.HomeName, m.AwayName
	case sideAway:
		return m.AwayName, m.HomeName
	default:
		return unknownName, m.HomeName
	}
}

func scorerLabel(raw model.RawGoal) string {
	label := strings.TrimSpace(raw.Scorer)
	if label == "" {
		label = unknownName
	}
	if isOwnGoal(raw.Kind) {
		label += ownGoalSuffix
	}
	return label
}

func isOwnGoal(kind string) bool {
	k := strings.ToLower(kind)
	return strings.Contains(k, "own")
}

func phaseFor(status string) string {
	if status == "" {
		return "LIVE"
	}
	return status
}

// parseMinute extracts the leading integer of a match clock string such as
// "12" or "45+2". Returns nil when no leading digits exist.
func parseMinute(clock string) *int {
	clock = strings.TrimSpace(clock)
	end := 0
	for end < len(clock) && clock[end] >= '0' && clock[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	minute, err := strconv.Atoi(clock[:end])
	if err != nil {
		return nil
	}
	return &minute
}

// eventID prefers the provider-supplied stable id and otherwise derives a
// short fingerprint that reproduces the same id for the same real-world goal
// across retries.
func eventID(matchID string, raw model.RawGoal) string {
	if raw.ID != "" {
		return matchID + "-" + raw.ID
	}
	key := matchID + "|" + raw.Time + "|" + strings.ToLower(raw.Scorer) + "|" + raw.Score
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
