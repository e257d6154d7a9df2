package dedupe_test

import (
	"fmt"
	"testing"

	"github.com/goalfeed/videprinter/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFIFOCache(t *testing.T) {
	Convey("Given a new FIFO cache", t, func() {
		Convey("When created with default options", func() {
			c := dedupe.NewFIFO()

			Convey("Then it should start empty", func() {
				So(c, ShouldNotBeNil)
				So(c.Len(), ShouldEqual, 0)
				So(c.Has("anything"), ShouldBeFalse)
			})
		})

		Convey("When adding ids", func() {
			c := dedupe.NewFIFO(dedupe.WithCapacity(100))

			c.Add("goal-1")

			Convey("Then membership is reported", func() {
				So(c.Has("goal-1"), ShouldBeTrue)
				So(c.Has("goal-2"), ShouldBeFalse)
				So(c.Len(), ShouldEqual, 1)
			})

			Convey("And re-adding the same id does not grow the cache", func() {
				c.Add("goal-1")
				So(c.Len(), ShouldEqual, 1)
			})
		})

		Convey("When inserting capacity+1 distinct ids", func() {
			const capacity = 10
			c := dedupe.NewFIFO(dedupe.WithCapacity(capacity))

			for i := 0; i <= capacity; i++ {
				c.Add(fmt.Sprintf("goal-%d", i))
			}

			Convey("Then the very first id is evicted and all others remain", func() {
				So(c.Has("goal-0"), ShouldBeFalse)
				for i := 1; i <= capacity; i++ {
					So(c.Has(fmt.Sprintf("goal-%d", i)), ShouldBeTrue)
				}
				So(c.Len(), ShouldEqual, capacity)
			})
		})

		Convey("When eviction proceeds beyond one entry", func() {
			c := dedupe.NewFIFO(dedupe.WithCapacity(2))

			c.Add("a")
			c.Add("b")
			c.Add("c")
			c.Add("d")

			Convey("Then eviction order follows insertion order", func() {
				So(c.Has("a"), ShouldBeFalse)
				So(c.Has("b"), ShouldBeFalse)
				So(c.Has("c"), ShouldBeTrue)
				So(c.Has("d"), ShouldBeTrue)
				So(c.Len(), ShouldEqual, 2)
			})
		})
	})
}
