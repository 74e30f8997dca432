package core

import (
	"testing"
	"time"
)

func TestResolvedDatePrecedence(t *testing.T) {
	created := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	cases := []struct {
		name    string
		r       Receipt
		want    time.Time
		present bool
	}{
		{
			name:    "extracted date wins over created_at",
			r:       Receipt{Date: "2025-01-15", CreatedAt: created},
			want:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			present: true,
		},
		{
			name:    "falls back to created_at calendar date",
			r:       Receipt{Date: "", CreatedAt: created},
			want:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			present: true,
		},
		{
			name:    "unparseable date falls back to created_at",
			r:       Receipt{Date: "15/01/2025", CreatedAt: created},
			want:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			present: true,
		},
		{
			name:    "whitespace date falls back to created_at",
			r:       Receipt{Date: "  ", CreatedAt: created},
			want:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			present: true,
		},
		{
			name:    "nothing resolvable",
			r:       Receipt{Date: "garbage"},
			present: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.r.ResolvedDate()
			if ok != tc.present {
				t.Fatalf("present=%v, want %v", ok, tc.present)
			}
			if ok && !got.Equal(tc.want) {
				t.Fatalf("date=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestHasAmount(t *testing.T) {
	if (Receipt{}).HasAmount() {
		t.Fatalf("nil amount should not count")
	}
	if !(Receipt{Amount: &Money{Cents: 0}}).HasAmount() {
		t.Fatalf("zero amount is a usable amount")
	}
	if (Receipt{Amount: &Money{Cents: -100}}).HasAmount() {
		t.Fatalf("negative amount must be excluded")
	}
}

func TestReceiptValidate(t *testing.T) {
	good := Receipt{
		ID:        "r-1",
		Amount:    &Money{Cents: 1234},
		Date:      "2025-01-01",
		CreatedAt: time.Now(),
		Status:    StatusExtracted,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Receipt{
		{ID: "", CreatedAt: time.Now(), Status: StatusUploaded},
		{ID: "r-2", CreatedAt: time.Now(), Status: "archived"},
		{ID: "r-3", CreatedAt: time.Now(), Status: StatusFinal, Amount: &Money{Cents: -1}},
		{ID: "r-4", Status: StatusUploaded}, // zero created_at
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGroupingLabels(t *testing.T) {
	r := Receipt{
		Category: &Category{ID: "c1", Name: "Groceries"},
		Merchant: &Merchant{CanonicalName: "Esselunga", RawName: "ESSELUNGA SPA 042"},
	}
	if got := r.CategoryLabel(); got != "Groceries" {
		t.Fatalf("category label %q", got)
	}
	if got := r.MerchantLabel(); got != "Esselunga" {
		t.Fatalf("merchant label %q", got)
	}

	raw := Receipt{Merchant: &Merchant{RawName: "COOP 19"}}
	if got := raw.MerchantLabel(); got != "COOP 19" {
		t.Fatalf("raw merchant fallback %q", got)
	}

	empty := Receipt{}
	if got := empty.CategoryLabel(); got != "Other" {
		t.Fatalf("category fallback %q", got)
	}
	if got := empty.MerchantLabel(); got != "Unknown" {
		t.Fatalf("merchant fallback %q", got)
	}
}
