package api

import (
	"net/http"
	"strconv"

	"github.com/goalfeed/videprinter/internal/domain/model"
)

const defaultHistoryLimit = 50

// handleHistory serves recently emitted events, newest first. The limit
// query parameter is optional and capped at the configured maximum.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > s.historyMaxLimit {
		limit = s.historyMaxLimit
	}

	events, err := s.deps.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "fetching history failed")
		return
	}
	if events == nil {
		events = []model.GoalEvent{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(events),
		"events": events,
	})
}
