package bus

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/goalfeed/videprinter/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func receive(c <-chan Message, timeout time.Duration) (Message, bool) {
	select {
	case msg, ok := <-c:
		return msg, ok
	case <-time.After(timeout):
		return Message{}, false
	}
}

func TestHub(t *testing.T) {
	Convey("Given a hub with two subscribers", t, func() {
		h := NewHub()
		defer h.Close()

		s1 := h.Subscribe()
		s2 := h.Subscribe()
		So(h.SubscriberCount(), ShouldEqual, 2)

		Convey("A published message reaches both", func() {
			h.Publish(Message{Topic: TopicGoal, Payload: "payload"})

			m1, ok1 := receive(s1.C, time.Second)
			m2, ok2 := receive(s2.C, time.Second)
			So(ok1, ShouldBeTrue)
			So(ok2, ShouldBeTrue)
			So(m1.Topic, ShouldEqual, TopicGoal)
			So(m2.Payload, ShouldEqual, "payload")
		})

		Convey("Unsubscribing closes the channel and stops delivery", func() {
			h.Unsubscribe(s1.ID)
			So(h.SubscriberCount(), ShouldEqual, 1)

			_, open := receive(s1.C, time.Second)
			So(open, ShouldBeFalse)

			h.Publish(Message{Topic: TopicGoal})
			_, ok := receive(s2.C, time.Second)
			So(ok, ShouldBeTrue)
		})

		Convey("Unsubscribing an unknown id is a no-op", func() {
			h.Unsubscribe("nope")
			So(h.SubscriberCount(), ShouldEqual, 2)
		})
	})

	Convey("Given a slow subscriber with a full buffer", t, func() {
		h := NewHub()
		defer h.Close()

		s := h.Subscribe()
		for i := 0; i < subscriberBufferSize+5; i++ {
			h.Publish(Message{Topic: TopicGoal, Payload: i})
		}

		Convey("Publishing never blocks and buffered messages survive", func() {
			msg, ok := receive(s.C, time.Second)
			So(ok, ShouldBeTrue)
			So(msg.Payload, ShouldEqual, 0)
		})
	})

	Convey("Given a started hub with a short heartbeat interval", t, func() {
		h := NewHub(WithHeartbeatInterval(10 * time.Millisecond))
		h.Start(context.Background())
		defer h.Close()

		s := h.Subscribe()

		Convey("Heartbeats are delivered periodically", func() {
			msg, ok := receive(s.C, time.Second)
			So(ok, ShouldBeTrue)
			So(msg.Topic, ShouldEqual, TopicHeartbeat)
			hb, isHB := msg.Payload.(Heartbeat)
			So(isHB, ShouldBeTrue)
			So(hb.Timestamp, ShouldNotBeEmpty)
		})
	})

	Convey("Given a closed hub", t, func() {
		h := NewHub()
		s := h.Subscribe()
		h.Close()

		Convey("Subscriber channels are closed", func() {
			_, open := receive(s.C, time.Second)
			So(open, ShouldBeFalse)
		})

		Convey("Subscribe after close returns a closed channel", func() {
			late := h.Subscribe()
			_, open := receive(late.C, time.Second)
			So(open, ShouldBeFalse)
		})

		Convey("Publish and Close are safe to call again", func() {
			h.Publish(Message{Topic: TopicGoal})
			h.Close()
		})
	})
}
