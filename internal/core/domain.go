package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusUploaded    ReceiptStatus = "uploaded"
	StatusProcessing  ReceiptStatus = "processing"
	StatusExtracted   ReceiptStatus = "extracted"
	StatusNeedsReview ReceiptStatus = "needs_review"
	StatusFinal       ReceiptStatus = "final"
)

type (
	// ReceiptStatus tracks extraction progress. It is informational only:
	// aggregation includes every receipt with a usable amount and date
	// regardless of status.
	ReceiptStatus string

	Money struct {
		Cents int64
	}

	// Category is the reference the extraction backend assigned, if any.
	Category struct {
		ID   string
		Name string
	}

	// Merchant carries both the raw OCR name and the canonical form.
	Merchant struct {
		CanonicalName string
		RawName       string
	}

	// Receipt is one stored receipt record. Amount, Category and Merchant
	// are nil until extraction produced them. Date is the transaction date
	// as extracted (ISO yyyy-mm-dd) and may be empty or unparseable;
	// CreatedAt is the upload time and never empty for stored records.
	Receipt struct {
		ID        string
		Amount    *Money
		Date      string
		CreatedAt time.Time
		Category  *Category
		Merchant  *Merchant
		Status    ReceiptStatus
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyID       = errors.New("empty receipt id")
)

// ResolvedDate returns the calendar date a receipt belongs to: the
// extracted transaction date when it parses, otherwise the upload date.
// The second return is false when neither resolves; such receipts are
// excluded from every date-bucketed view.
//
// This is the single place that decides date precedence. Callers must not
// re-branch on Date vs CreatedAt themselves.
func (r Receipt) ResolvedDate() (time.Time, bool) {
	if s := strings.TrimSpace(r.Date); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return t, true
		}
	}
	if !r.CreatedAt.IsZero() {
		y, m, d := r.CreatedAt.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// HasAmount reports whether the receipt carries a usable total.
// Negative totals are treated as extraction garbage, not as refunds.
func (r Receipt) HasAmount() bool {
	return r.Amount != nil && r.Amount.Cents >= 0
}

func (s ReceiptStatus) IsValid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusExtracted, StatusNeedsReview, StatusFinal:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the invariants the write path requires before a receipt
// is stored. Aggregation never validates; it excludes per record instead.
func (r Receipt) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.Amount != nil {
		if err := r.Amount.Validate(); err != nil {
			return err
		}
	}
	if r.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}
	return nil
}

// CategoryLabel returns the display name used for grouping, with a stable
// fallback for uncategorized receipts.
func (r Receipt) CategoryLabel() string {
	if r.Category != nil && strings.TrimSpace(r.Category.Name) != "" {
		return r.Category.Name
	}
	return "Other"
}

// MerchantLabel prefers the canonical merchant name, then the raw OCR name.
func (r Receipt) MerchantLabel() string {
	if r.Merchant != nil {
		if strings.TrimSpace(r.Merchant.CanonicalName) != "" {
			return r.Merchant.CanonicalName
		}
		if strings.TrimSpace(r.Merchant.RawName) != "" {
			return r.Merchant.RawName
		}
	}
	return "Unknown"
}
