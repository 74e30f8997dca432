package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"ricevute/internal/core"
	"ricevute/internal/stats"
)

func TestMonthCSV(t *testing.T) {
	snapshot := []core.Receipt{
		{
			ID:        "r1",
			Amount:    &core.Money{Cents: 1999},
			Date:      "2025-03-10",
			CreatedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			Category:  &core.Category{ID: "c1", Name: "Groceries"},
			Merchant:  &core.Merchant{CanonicalName: "Esselunga"},
			Status:    core.StatusFinal,
		},
		{
			ID:        "r2",
			CreatedAt: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
			Status:    core.StatusNeedsReview,
		},
	}
	v := stats.Compute(snapshot, stats.Cursor{Year: 2025, Month: 2})

	out, err := MonthCSV(v)
	if err != nil {
		t.Fatalf("MonthCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if got := strings.Join(records[0], ","); got != "id,date,amount_eur,category,merchant,status" {
		t.Errorf("unexpected header %q", got)
	}
	if got := records[1]; got[0] != "r1" || got[1] != "2025-03-10" || got[2] != "19.99" || got[3] != "Groceries" || got[4] != "Esselunga" {
		t.Errorf("unexpected first row %v", got)
	}
	if got := records[2]; got[0] != "r2" || got[1] != "2025-03-12" || got[2] != "" || got[3] != "Other" || got[4] != "Unknown" {
		t.Errorf("unexpected second row %v", got)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(stats.Cursor{Year: 2025, Month: 0}); got != "receipts-2025-01.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}
