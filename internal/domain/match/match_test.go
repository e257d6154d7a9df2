package match

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/goalfeed/videprinter/internal/domain/model"
)

func TestNormalizeName(t *testing.T) {
	Convey("Normalizing names", t, func() {
		Convey("It lowercases and strips punctuation", func() {
			So(normalizeName("Fletcher, Ashley"), ShouldEqual, "fletcher ashley")
			So(normalizeName("O'Brien"), ShouldEqual, "o brien")
		})

		Convey("It removes generic club-suffix words", func() {
			So(normalizeName("Bristol City"), ShouldEqual, "bristol")
			So(normalizeName("Leeds United FC"), ShouldEqual, "leeds")
			So(normalizeName("Wycombe Wanderers"), ShouldEqual, "wycombe")
		})

		Convey("It collapses whitespace", func() {
			So(normalizeName("  Aston   Villa "), ShouldEqual, "aston villa")
		})
	})
}

func TestNormalizedLevenshtein(t *testing.T) {
	Convey("Normalized edit distance", t, func() {
		So(normalizedLevenshtein("abc", "abc"), ShouldEqual, 0)
		So(normalizedLevenshtein("", ""), ShouldEqual, 0)
		So(normalizedLevenshtein("abc", ""), ShouldEqual, 1)
		So(normalizedLevenshtein("abcde", "abxxx"), ShouldAlmostEqual, 0.6, 0.001)
	})
}

func TestFindPlayerMatches(t *testing.T) {
	Convey("Given a matcher loaded with players", t, func() {
		m := NewMatcher()
		m.Update([]model.RosterEntry{
			{Name: "Fletcher, Ashley", Team: "Sheffield Wednesday", Manager: "Alice"},
			{Name: "Jonathan Smith", Team: "Leeds United", Manager: "Bob"},
			{Name: "Sub Player", Team: "Leeds United", Manager: "Bob", Substitute: true},
			{Name: "Smith, Jonathan", Team: "QPR", Manager: "Cara"},
		}, nil)

		Convey("It matches names regardless of word order", func() {
			got := m.FindPlayerMatches("Ashley Fletcher", "")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Name, ShouldEqual, "Fletcher, Ashley")
			So(got[0].Confidence, ShouldEqual, 1)
		})

		Convey("It tolerates small typos", func() {
			got := m.FindPlayerMatches("Jonathon Smith", "")
			So(len(got), ShouldBeGreaterThanOrEqualTo, 1)
			So(got[0].Entry.Name, ShouldBeIn, "Jonathan Smith", "Smith, Jonathan")
		})

		Convey("It never returns substitutes", func() {
			got := m.FindPlayerMatches("Sub Player", "")
			So(got, ShouldBeEmpty)
		})

		Convey("It filters by a long team hint as a substring", func() {
			got := m.FindPlayerMatches("Jonathan Smith", "Leeds United")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "Leeds United")
		})

		Convey("It requires an exact team for a short hint", func() {
			got := m.FindPlayerMatches("Jonathan Smith", "QPR")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "QPR")
		})

		Convey("It returns nothing for an empty query", func() {
			So(m.FindPlayerMatches("", ""), ShouldBeEmpty)
			So(m.FindPlayerMatches("  , ", ""), ShouldBeEmpty)
		})
	})

	Convey("Given roster team names shorter than the feed's", t, func() {
		m := NewMatcher()
		m.Update([]model.RosterEntry{
			{Name: "Jonathan Smith", Team: "Leeds", Manager: "Alice"},
			{Name: "Peter Jones", Team: "Sheffield Wednesday", Manager: "Bob"},
		}, nil)

		Convey("A longer feed hint containing the roster team matches", func() {
			got := m.FindPlayerMatches("Jonathan Smith", "Leeds Utd")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "Leeds")
		})

		Convey("A shorter feed hint contained in the roster team matches", func() {
			got := m.FindPlayerMatches("Peter Jones", "Sheffield")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "Sheffield Wednesday")
		})

		Convey("An unrelated feed hint still matches nothing", func() {
			So(m.FindPlayerMatches("Jonathan Smith", "Arsenal"), ShouldBeEmpty)
		})
	})

	Convey("Given the same player name rostered for different teams", t, func() {
		m := NewMatcher()
		m.Update([]model.RosterEntry{
			{Name: "Fletcher, Ashley", Team: "Blackpool", Manager: "Alice"},
			{Name: "Semenyo, Antoine", Team: "Bristol City", Manager: "Bob"},
		}, nil)

		Convey("A hint for the right team matches", func() {
			got := m.FindPlayerMatches("Ashley Fletcher", "Blackpool")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "Blackpool")
			So(got[0].Confidence, ShouldBeGreaterThan, 0.3)
		})

		Convey("A hint for another player's team matches nothing", func() {
			got := m.FindPlayerMatches("Ashley Fletcher", "Bristol City")
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given names near the confidence floor", t, func() {
		m := NewMatcher()
		m.Update([]model.RosterEntry{
			{Name: "abcdefghij", Team: "X"},
		}, nil)

		Convey("A candidate above the floor is kept", func() {
			// 4 edits over 10 runes: distance 0.4, confidence 0.6.
			got := m.FindPlayerMatches("abcdefxxxx", "")
			So(len(got), ShouldEqual, 1)
			So(got[0].Confidence, ShouldAlmostEqual, 0.6, 0.001)
		})

		Convey("A candidate at the floor is dropped", func() {
			// 5 edits over 10 runes: distance 0.5, confidence exactly 0.5.
			got := m.FindPlayerMatches("abcdexxxxx", "")
			So(got, ShouldBeEmpty)
		})

		Convey("A candidate below the floor is dropped", func() {
			// 6 edits over 10 runes: distance 0.6, confidence 0.4.
			got := m.FindPlayerMatches("abcdxxxxxx", "")
			So(got, ShouldBeEmpty)
		})
	})

	Convey("Given a long name just above the floor", t, func() {
		m := NewMatcher()
		m.Update([]model.RosterEntry{
			{Name: "abcdefghijklmnopqrst", Team: "X"},
		}, nil)

		Convey("Confidence 0.55 is kept", func() {
			// 9 edits over 20 runes: distance 0.45, confidence 0.55.
			got := m.FindPlayerMatches("abcdefghijkxxxxxxxxx", "")
			So(len(got), ShouldEqual, 1)
			So(got[0].Confidence, ShouldAlmostEqual, 0.55, 0.001)
		})
	})
}

func TestFindGoalkeeperMatches(t *testing.T) {
	Convey("Given a matcher loaded with goalkeepers", t, func() {
		m := NewMatcher()
		m.Update(nil, []model.RosterEntry{
			{Name: "Keeper One", Team: "Bristol City", Manager: "Dan"},
			{Name: "Keeper Two", Team: "Blackpool", Manager: "Eve"},
		})

		Convey("It matches the team after suffix normalization", func() {
			got := m.FindGoalkeeperMatches("Bristol")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Name, ShouldEqual, "Keeper One")
		})

		Convey("Dissimilar teams do not match", func() {
			got := m.FindGoalkeeperMatches("Blackpool")
			So(len(got), ShouldEqual, 1)
			So(got[0].Entry.Team, ShouldEqual, "Blackpool")
		})
	})
}

func TestSummary(t *testing.T) {
	Convey("The summary counts players, goalkeepers and distinct managers", t, func() {
		m := NewMatcher()
		So(m.Summary(), ShouldResemble, Summary{})

		m.Update([]model.RosterEntry{
			{Name: "A", Team: "T1", Manager: "Alice"},
			{Name: "B", Team: "T2", Manager: "Bob"},
		}, []model.RosterEntry{
			{Name: "K", Team: "T1", Manager: "Alice"},
		})

		So(m.Summary(), ShouldResemble, Summary{
			PlayersLoaded:     2,
			GoalkeepersLoaded: 1,
			UniqueManagers:    2,
		})
	})
}
