package api

import "net/http"

// handleFantasyStatus reports the roster enrichment state.
func (s *Server) handleFantasyStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.FantasyStatus())
}

// handleStats reports the operational snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Stats(r.Context()))
}
