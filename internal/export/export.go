// Package export serializes a selected month's receipts for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"ricevute/internal/stats"
)

var csvHeader = []string{"id", "date", "amount_eur", "category", "merchant", "status"}

// MonthCSV writes the receipts of the selected month as CSV, one row
// per receipt in snapshot order. Receipts without an amount get an
// empty amount column.
func MonthCSV(v stats.Views) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range v.Receipts {
		amount := ""
		if r.HasAmount() {
			amount = strconv.FormatFloat(r.Amount.Euros(), 'f', 2, 64)
		}
		date := r.Date
		if date == "" {
			if d, ok := r.ResolvedDate(); ok {
				date = d.Format("2006-01-02")
			}
		}
		row := []string{r.ID, date, amount, r.CategoryLabel(), r.MerchantLabel(), string(r.Status)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row for receipt %s: %w", r.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for a month export, e.g.
// "receipts-2025-03.csv".
func Filename(c stats.Cursor) string {
	return fmt.Sprintf("receipts-%s.csv", c)
}
