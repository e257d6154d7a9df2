// Package model contains domain models passed between layers.
package model

import "time"

// TeamRef names one side of a fixture.
type TeamRef struct {
	Name string `json:"name"`
}

// PersonRef identifies a scorer or assist provider.
type PersonRef struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
}

// Score is the running score after an event. Both fields are nil when the
// provider supplied no parseable score information.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// GoalFor annotates a goal with the fantasy manager who owns the scorer.
type GoalFor struct {
	Manager    string  `json:"manager"`
	Player     string  `json:"player"`
	Team       string  `json:"team"`
	Confidence float64 `json:"confidence"`
	Substitute bool    `json:"substitute"`
}

// ConcedingFor annotates a goal with the fantasy manager whose goalkeeper
// team conceded it.
type ConcedingFor struct {
	Manager    string  `json:"manager"`
	Team       string  `json:"team"`
	Confidence float64 `json:"confidence"`
	Substitute bool    `json:"substitute"`
}

// GoalEvent is the canonical record of one scoring event in a fixture.
// It is immutable once published.
type GoalEvent struct {
	ID              string     `json:"id"`
	FixtureID       string     `json:"fixtureId"`
	Competition     string     `json:"competition"`
	UTCTimestamp    time.Time  `json:"utcTimestamp"`
	Minute          *int       `json:"minute"`
	ScoringTeam     TeamRef    `json:"scoringTeam"`
	ConcedingTeam   TeamRef    `json:"concedingTeam"`
	Scorer          PersonRef  `json:"scorer"`
	Assist          *PersonRef `json:"assist"`
	ScoreAfterEvent Score      `json:"scoreAfterEvent"`
	Phase           string     `json:"phase"`
	Source          string     `json:"source"`

	PotentialGoalFor      *GoalFor      `json:"potentialGoalFor,omitempty"`
	PotentialConcedingFor *ConcedingFor `json:"potentialConcedingFor,omitempty"`
}

// RosterEntry is one fantasy roster row. For goalkeeper entries Name holds
// the real-world team name the fantasy manager picked.
type RosterEntry struct {
	Name       string `json:"name"`
	Team       string `json:"team"`
	Manager    string `json:"manager"`
	Substitute bool   `json:"substitute"`
}

// RawGoal is one unprocessed goal record from the provider.
type RawGoal struct {
	// ID is the provider-supplied stable event id, when the plan includes one.
	ID string
	// Time is the match clock string, e.g. "12" or "45+2".
	Time string
	// Scorer is free text; some feeds embed the team name in it.
	Scorer string
	// Score is the explicit score after this goal, e.g. "1 - 0". Optional.
	Score string
	// Side is an explicit scoring side marker: "home" or "away". Optional.
	Side string
	// Kind categorizes the event, e.g. "goal", "owngoal", "penalty".
	Kind string
	// Sort is an explicit provider ordering key; zero means unset.
	Sort int
}

// RawMatch is one unprocessed fixture record from the provider match list.
type RawMatch struct {
	ID              string
	CompetitionID   string
	CompetitionName string
	HomeName        string
	AwayName        string
	// Score is the current fixture score string, e.g. "2 - 1".
	Score string
	// HTScore is the half-time score string. Optional.
	HTScore string
	Status  string
	// Events holds embedded goal detail when the plan includes it inline.
	Events []RawGoal
	// EventsURL points at a per-match detail feed when events are not inline.
	EventsURL string
}
