package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ricevute/internal/core"
	applog "ricevute/internal/log"
)

type receiptRequest struct {
	ID       string `json:"id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Merchant string `json:"merchant"`
	Status   string `json:"status"`
}

// handleUpsertReceipt creates or replaces a receipt. Manual entries
// default to final status; extracted receipts arrive through the event
// stream instead.
func (s *Server) handleUpsertReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rec := core.Receipt{
		ID:        strings.TrimSpace(req.ID),
		Date:      strings.TrimSpace(req.Date),
		CreatedAt: time.Now().UTC(),
		Status:    core.ReceiptStatus(req.Status),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = core.StatusFinal
	}

	if req.Amount != "" {
		cents, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid amount %q", req.Amount), err)
			return
		}
		rec.Amount = &core.Money{Cents: cents}
	}
	if rec.Date != "" {
		if _, err := time.Parse(time.DateOnly, rec.Date); err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid date %q: must be YYYY-MM-DD", req.Date), err)
			return
		}
	}
	if name := strings.TrimSpace(req.Category); name != "" {
		rec.Category = &core.Category{Name: name}
	}
	if name := strings.TrimSpace(req.Merchant); name != "" {
		rec.Merchant = &core.Merchant{CanonicalName: name}
	}

	if err := rec.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := s.store.Upsert(r.Context(), rec); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to store receipt", err)
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to refresh snapshot", err)
		return
	}

	logger := applog.FromContext(r.Context())
	logger.InfoContext(r.Context(), "receipt stored",
		applog.FieldReceiptID, rec.ID,
		applog.FieldOperation, applog.OpUpsert)

	writeJSON(w, http.StatusCreated, toReceiptJSON(rec))
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "missing receipt id", nil)
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("receipt %s not found", id), err)
		return
	}
	if err := s.refresh(r.Context()); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to refresh snapshot", err)
		return
	}

	logger := applog.FromContext(r.Context())
	logger.InfoContext(r.Context(), "receipt deleted",
		applog.FieldReceiptID, id,
		applog.FieldOperation, applog.OpDelete)

	w.WriteHeader(http.StatusNoContent)
}
