package main

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSystemMetricsUpdater(t *testing.T) {
	Convey("The system metrics updater stops when the context is cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			startSystemMetricsUpdater(ctx)
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("updater did not stop")
		}
	})
}
