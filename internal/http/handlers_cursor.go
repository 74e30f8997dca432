package http

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type cursorRequest struct {
	Action string `json:"action"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

func (s *Server) handleGetCursor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toCursorJSON(s.engine.Cursor()))
}

// handleMoveCursor moves the selected month. Month indexes are zero
// based, matching the cursor the dashboard navigates with.
func (s *Server) handleMoveCursor(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	switch req.Action {
	case "prev":
		s.engine.PrevMonth()
	case "next":
		s.engine.NextMonth()
	case "reset":
		s.engine.ResetToCurrent()
	case "select":
		if req.Month < 0 || req.Month > 11 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid month %d: must be between 0 and 11", req.Month), nil)
			return
		}
		if req.Year < 1 {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid year %d", req.Year), nil)
			return
		}
		s.engine.SelectMonth(req.Year, req.Month)
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid action %q: must be prev, next, reset or select", req.Action), nil)
		return
	}

	writeJSON(w, http.StatusOK, toCursorJSON(s.engine.Cursor()))
}
