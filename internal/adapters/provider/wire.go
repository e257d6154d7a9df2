package provider

import (
	"encoding/json"
	"strings"

	"github.com/goalfeed/videprinter/internal/domain/model"
)

// Wire formats of the live-score feed. The feed is loosely typed; ids arrive
// as numbers or strings depending on endpoint, so json.Number is used
// throughout.

type liveMatchesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Match []wireMatch `json:"match"`
	} `json:"data"`
}

type matchEventsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Event []wireEvent `json:"event"`
	} `json:"data"`
}

type wireMatch struct {
	ID            json.Number `json:"id"`
	CompetitionID json.Number `json:"competition_id"`
	Competition   struct {
		Name string `json:"name"`
	} `json:"competition"`
	HomeName string `json:"home_name"`
	AwayName string `json:"away_name"`
	Score    string `json:"score"`
	HTScore  string `json:"ht_score"`
	Status   string `json:"status"`
	Events   string `json:"events"`
}

type wireEvent struct {
	ID       json.Number `json:"id"`
	Time     string      `json:"time"`
	Player   string      `json:"player"`
	Event    string      `json:"event"`
	Score    string      `json:"score"`
	HomeAway string      `json:"home_away"`
	Sort     int         `json:"sort"`
}

func (w wireMatch) toModel() model.RawMatch {
	return model.RawMatch{
		ID:              w.ID.String(),
		CompetitionID:   w.CompetitionID.String(),
		CompetitionName: w.Competition.Name,
		HomeName:        w.HomeName,
		AwayName:        w.AwayName,
		Score:           w.Score,
		HTScore:         w.HTScore,
		Status:          w.Status,
		EventsURL:       w.Events,
	}
}

func (w wireEvent) toModel() model.RawGoal {
	return model.RawGoal{
		ID:     w.ID.String(),
		Time:   w.Time,
		Scorer: w.Player,
		Score:  w.Score,
		Side:   sideFromMarker(w.HomeAway),
		Kind:   strings.ToLower(w.Event),
		Sort:   w.Sort,
	}
}

func sideFromMarker(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "home", "1":
		return "home"
	case "a", "away", "2":
		return "away"
	default:
		return ""
	}
}

// isGoalEvent reports whether a feed event kind describes a goal.
func isGoalEvent(kind string) bool {
	k := strings.ToLower(kind)
	return strings.Contains(k, "goal") && !strings.Contains(k, "disallowed")
}
