package repository

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/quota"
	"github.com/goalfeed/videprinter/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func storedEvent(id string, ts time.Time) model.GoalEvent {
	return model.GoalEvent{ID: id, FixtureID: "f1", UTCTimestamp: ts}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	Convey("Given an empty memory store", t, func() {
		s := NewMemoryStore()

		Convey("RecentEvents returns nothing", func() {
			got, err := s.RecentEvents(ctx, 10)
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("ExistingIDs reports nothing", func() {
			got, err := s.ExistingIDs(ctx, []string{"a", "b"})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("LoadQuota reports no stored state", func() {
			_, ok, err := s.LoadQuota(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given saved events", t, func() {
		s := NewMemoryStore()
		err := s.SaveEvents(ctx, []model.GoalEvent{
			storedEvent("e1", base),
			storedEvent("e2", base.Add(time.Minute)),
			storedEvent("e3", base.Add(2*time.Minute)),
		})
		So(err, ShouldBeNil)

		Convey("RecentEvents returns newest first and honors the limit", func() {
			got, err := s.RecentEvents(ctx, 2)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "e3")
			So(got[1].ID, ShouldEqual, "e2")
		})

		Convey("Saving an existing id is a no-op", func() {
			err := s.SaveEvents(ctx, []model.GoalEvent{storedEvent("e2", base)})
			So(err, ShouldBeNil)
			got, _ := s.RecentEvents(ctx, 0)
			So(len(got), ShouldEqual, 3)
		})

		Convey("ExistingIDs reports only the stored subset", func() {
			got, err := s.ExistingIDs(ctx, []string{"e1", "e3", "missing"})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got, ShouldContainKey, "e1")
			So(got, ShouldContainKey, "e3")
		})
	})

	Convey("Quota state round-trips", t, func() {
		s := NewMemoryStore()
		err := s.SaveQuota(ctx, quota.State{DateKey: "2026-03-10", Count: 4})
		So(err, ShouldBeNil)

		state, ok, err := s.LoadQuota(ctx)
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		So(state, ShouldResemble, quota.State{DateKey: "2026-03-10", Count: 4})
	})
}
