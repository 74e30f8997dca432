package http

import (
	"context"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks store reachability before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.Snapshot(ctx); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "store not reachable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
