package roster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/goalfeed/videprinter/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

const goodBody = `{
	"data": {
		"players": [
			{"name": "Ashley Fletcher", "team": "Sheffield Wednesday", "manager": "Alice"},
			{"name": "Sub Player", "team": "Leeds United", "manager": "Bob", "substitute": true}
		],
		"goalkeepers": [
			{"name": "Bristol City", "team": "Bristol City", "manager": "Cara"}
		]
	}
}`

func TestClientFetch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a healthy roster service", t, func(cc C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cc.So(r.URL.Path, ShouldEqual, "/api/roster")
			_, _ = w.Write([]byte(goodBody))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)

		Convey("Fetch parses players and goalkeepers", func() {
			got, err := c.Fetch(ctx)
			So(err, ShouldBeNil)
			So(len(got.Players), ShouldEqual, 2)
			So(got.Players[0].Name, ShouldEqual, "Ashley Fletcher")
			So(got.Players[1].Substitute, ShouldBeTrue)
			So(len(got.Goalkeepers), ShouldEqual, 1)
			So(got.Goalkeepers[0].Manager, ShouldEqual, "Cara")
		})
	})

	Convey("Given a service that fails after one good fetch", t, func() {
		var failing atomic.Bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if failing.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(goodBody))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Fetch(ctx)
		So(err, ShouldBeNil)
		failing.Store(true)

		Convey("Fetch falls back to the last good payload", func() {
			got, err := c.Fetch(ctx)
			So(err, ShouldBeNil)
			So(len(got.Players), ShouldEqual, 2)
		})
	})

	Convey("Given a service that has never succeeded", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL)

		Convey("Fetch surfaces the failure", func() {
			_, err := c.Fetch(ctx)
			So(errors.Is(err, ErrFetchFailed), ShouldBeTrue)
		})
	})

	Convey("Given a garbled response body", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)

		Convey("Fetch fails", func() {
			_, err := c.Fetch(ctx)
			So(errors.Is(err, ErrFetchFailed), ShouldBeTrue)
		})
	})
}
