// Package api exposes the service over HTTP: event stream endpoints,
// history, fantasy status and operational surfaces.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goalfeed/videprinter/internal/adapters/bus"
	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/enrich"
	"github.com/goalfeed/videprinter/pkg/logger"
)

const defaultHistoryMaxLimit = 500

// Stats is the operational snapshot served by the stats endpoint.
type Stats struct {
	Provider       string `json:"provider"`
	Subscribers    int    `json:"subscribers"`
	ReplaySize     int    `json:"replaySize"`
	QuotaRemaining int    `json:"quotaRemaining"`
	UptimeSeconds  int64  `json:"uptimeSeconds"`
}

// Dependencies is the application surface the handlers are built on.
type Dependencies interface {
	// History returns up to limit emitted events, newest first.
	History(ctx context.Context, limit int) ([]model.GoalEvent, error)

	// Subscribe registers a live event subscriber.
	Subscribe() bus.Subscription

	// Unsubscribe removes a live event subscriber.
	Unsubscribe(id string)

	// FantasyStatus reports the enrichment state.
	FantasyStatus() enrich.Status

	// Stats reports the operational snapshot.
	Stats(ctx context.Context) Stats
}

// Server holds the HTTP handlers.
type Server struct {
	deps            Dependencies
	historyMaxLimit int
	log             logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithHistoryMaxLimit caps the limit accepted by the history endpoint.
func WithHistoryMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.historyMaxLimit = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer constructs a Server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:            deps,
		historyMaxLimit: defaultHistoryMaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("api")
	}
	return s
}

// Register mounts all routes on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("GET /videprinter/stream", Metrics("stream", http.HandlerFunc(s.handleStream)))
	mux.Handle("GET /videprinter/ws", http.HandlerFunc(s.handleWebSocket))
	mux.Handle("GET /videprinter/history", Metrics("history", http.HandlerFunc(s.handleHistory)))
	mux.Handle("GET /videprinter/fantasy/status", Metrics("fantasy_status", http.HandlerFunc(s.handleFantasyStatus)))
	mux.Handle("GET /stats", Metrics("stats", http.HandlerFunc(s.handleStats)))
	mux.Handle("GET /healthz", Metrics("healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /metrics", metricsHandler())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn(context.Background(), "writing response failed", logger.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
