package replay_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/replay"
)

func event(id string) model.GoalEvent {
	return model.GoalEvent{ID: id}
}

func TestBuffer(t *testing.T) {
	Convey("Given an empty buffer", t, func() {
		b := replay.NewBuffer()

		Convey("It lists nothing", func() {
			So(b.Len(), ShouldEqual, 0)
			So(b.List(10, replay.OrderDescending), ShouldBeEmpty)
		})
	})

	Convey("Given a buffer with three events", t, func() {
		b := replay.NewBuffer()
		b.Add(event("E1"))
		b.Add(event("E2"))
		b.Add(event("E3"))

		Convey("Descending lists newest first", func() {
			got := b.List(2, replay.OrderDescending)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "E3")
			So(got[1].ID, ShouldEqual, "E2")
		})

		Convey("Ascending lists oldest first", func() {
			got := b.List(2, replay.OrderAscending)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "E2")
			So(got[1].ID, ShouldEqual, "E3")
		})

		Convey("A zero limit returns everything", func() {
			So(len(b.List(0, replay.OrderAscending)), ShouldEqual, 3)
		})

		Convey("A limit beyond the length returns everything", func() {
			So(len(b.List(100, replay.OrderDescending)), ShouldEqual, 3)
		})
	})

	Convey("Given a buffer at capacity", t, func() {
		b := replay.NewBuffer(replay.WithCapacity(3))
		for i := 1; i <= 4; i++ {
			b.Add(event(fmt.Sprintf("E%d", i)))
		}

		Convey("The oldest event is evicted", func() {
			So(b.Len(), ShouldEqual, 3)
			got := b.List(0, replay.OrderAscending)
			So(got[0].ID, ShouldEqual, "E2")
			So(got[2].ID, ShouldEqual, "E4")
		})
	})
}
