package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/goalfeed/videprinter/pkg/logger"
)

// handleStream serves the live event feed over server-sent events. Each bus
// message becomes one SSE event named after its topic.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disables proxy buffering so events reach the client immediately.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	s.writeSSE(w, "connected", map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	flusher.Flush()

	sub := s.deps.Subscribe()
	defer s.deps.Unsubscribe(sub.ID)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-sub.C:
			if !open {
				return
			}
			s.writeSSE(w, msg.Topic, msg.Payload)
			flusher.Flush()
		}
	}
}

func (s *Server) writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn(context.Background(), "marshaling stream payload failed", logger.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
