package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ricevute/internal/core"
	applog "ricevute/internal/log"
	"ricevute/internal/receipts/memory"
	"ricevute/internal/stats"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	seed := []core.Receipt{
		{
			ID:        "r1",
			Amount:    &core.Money{Cents: 1500},
			Date:      "2025-03-01",
			CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
			Category:  &core.Category{ID: "c1", Name: "Groceries"},
			Merchant:  &core.Merchant{CanonicalName: "Esselunga"},
			Status:    core.StatusFinal,
		},
		{
			ID:        "r2",
			Amount:    &core.Money{Cents: 2000},
			Date:      "2025-03-15",
			CreatedAt: time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			Category:  &core.Category{ID: "c2", Name: "Transport"},
			Merchant:  &core.Merchant{CanonicalName: "Trenitalia"},
			Status:    core.StatusFinal,
		},
	}
	for _, r := range seed {
		if err := store.Upsert(context.Background(), r); err != nil {
			t.Fatalf("seed receipt %s: %v", r.ID, err)
		}
	}

	engine := stats.NewEngine()
	snapshot, err := store.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	engine.SetSnapshot(snapshot)
	engine.SelectMonth(2025, 2)

	logger := applog.New(applog.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
	srv := NewServer(":0", store, engine, logger)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleDashboard(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var dash dashboardJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.Cursor.Year != 2025 || dash.Cursor.Month != 2 {
		t.Errorf("cursor = %+v", dash.Cursor)
	}
	if dash.MonthSpend.Cents != 3500 {
		t.Errorf("month spend = %d cents", dash.MonthSpend.Cents)
	}
	if dash.MonthSpend.Euros != "€35,00" {
		t.Errorf("month spend euros = %q", dash.MonthSpend.Euros)
	}
	if len(dash.Daily) != 31 {
		t.Errorf("daily series length = %d", len(dash.Daily))
	}
	if len(dash.Receipts) != 2 {
		t.Errorf("receipts = %d", len(dash.Receipts))
	}
	if len(dash.Categories) != 2 || dash.Categories[0].Name != "Transport" {
		t.Errorf("categories = %+v", dash.Categories)
	}
}

func TestHandleCursor(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/cursor", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var c cursorJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Year != 2025 || c.Month != 2 || c.Label != "2025-03" {
		t.Errorf("cursor = %+v", c)
	}

	tests := []struct {
		name      string
		body      cursorRequest
		wantCode  int
		wantYear  int
		wantMonth int
	}{
		{name: "prev", body: cursorRequest{Action: "prev"}, wantCode: http.StatusOK, wantYear: 2025, wantMonth: 1},
		{name: "next", body: cursorRequest{Action: "next"}, wantCode: http.StatusOK, wantYear: 2025, wantMonth: 2},
		{name: "select", body: cursorRequest{Action: "select", Year: 2024, Month: 11}, wantCode: http.StatusOK, wantYear: 2024, wantMonth: 11},
		{name: "invalid action", body: cursorRequest{Action: "jump"}, wantCode: http.StatusBadRequest},
		{name: "month out of range", body: cursorRequest{Action: "select", Year: 2024, Month: 12}, wantCode: http.StatusBadRequest},
		{name: "bad year", body: cursorRequest{Action: "select", Year: 0, Month: 3}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/cursor", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var c cursorJSON
			if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if c.Year != tt.wantYear || c.Month != tt.wantMonth {
				t.Errorf("cursor = %+v", c)
			}
		})
	}
}

func TestHandleCursorYearRollOver(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/cursor", cursorRequest{Action: "select", Year: 2025, Month: 0})
	rec := doRequest(t, srv, http.MethodPost, "/api/cursor", cursorRequest{Action: "prev"})

	var c cursorJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Year != 2024 || c.Month != 11 {
		t.Errorf("cursor after prev from january = %+v", c)
	}
}

func TestHandleUpsertReceipt(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/receipts", receiptRequest{
		Amount:   "12.50",
		Date:     "2025-03-20",
		Category: "Dining",
		Merchant: "Trattoria da Mario",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created receiptJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.Amount == nil || created.Amount.Cents != 1250 {
		t.Errorf("amount = %+v", created.Amount)
	}
	if created.Status != string(core.StatusFinal) {
		t.Errorf("status = %q", created.Status)
	}

	// The write must be visible in the dashboard immediately.
	dashRec := doRequest(t, srv, http.MethodGet, "/api/dashboard", nil)
	var dash dashboardJSON
	if err := json.Unmarshal(dashRec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.MonthSpend.Cents != 4750 {
		t.Errorf("month spend after upsert = %d cents", dash.MonthSpend.Cents)
	}
}

func TestHandleUpsertReceiptValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body receiptRequest
	}{
		{name: "bad amount", body: receiptRequest{Amount: "abc"}},
		{name: "negative amount", body: receiptRequest{Amount: "-5.00"}},
		{name: "bad date", body: receiptRequest{Amount: "5.00", Date: "20-03-2025"}},
		{name: "bad status", body: receiptRequest{Amount: "5.00", Status: "archived"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/receipts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleDeleteReceipt(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/receipts/r1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	dashRec := doRequest(t, srv, http.MethodGet, "/api/dashboard", nil)
	var dash dashboardJSON
	if err := json.Unmarshal(dashRec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.MonthSpend.Cents != 2000 {
		t.Errorf("month spend after delete = %d cents", dash.MonthSpend.Cents)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/receipts/r1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
}

func TestHandleExportCSV(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/export/month.csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipts-2025-03.csv") {
		t.Errorf("content disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
}

func TestHandleCharts(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/charts/daily.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	// An empty month has no chart.
	doRequest(t, srv, http.MethodPost, "/api/cursor", cursorRequest{Action: "select", Year: 2020, Month: 0})
	rec = doRequest(t, srv, http.MethodGet, "/api/charts/daily.png", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty month chart status = %d", rec.Code)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	srv, _ := newTestServer(t)

	// httptest requests share a RemoteAddr, so they count against one
	// client.
	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		last = doRequest(t, srv, http.MethodDelete, "/api/receipts/nope", nil)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status after 61 writes = %d", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("retry-after = %q", last.Header().Get("Retry-After"))
	}

	// Reads stay unthrottled.
	rec := doRequest(t, srv, http.MethodGet, "/api/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}
