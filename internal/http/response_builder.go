package http

import (
	"encoding/json"
	"net/http"

	"ricevute/internal/core"
	applog "ricevute/internal/log"
	"ricevute/internal/stats"
)

// JSON shapes for the dashboard API. Amounts travel as integer cents,
// with a formatted euro string alongside for direct display.

type moneyJSON struct {
	Cents int64  `json:"cents"`
	Euros string `json:"euros"`
}

type cursorJSON struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

type dailyPointJSON struct {
	Day        int       `json:"day"`
	Amount     moneyJSON `json:"amount"`
	Cumulative moneyJSON `json:"cumulative"`
}

type deltaJSON struct {
	Percent  int  `json:"percent"`
	Increase bool `json:"increase"`
}

type breakdownJSON struct {
	Name         string    `json:"name"`
	Total        moneyJSON `json:"total"`
	PercentOfMax float64   `json:"percent_of_max"`
}

type receiptJSON struct {
	ID       string     `json:"id"`
	Date     string     `json:"date,omitempty"`
	Amount   *moneyJSON `json:"amount,omitempty"`
	Category string     `json:"category"`
	Merchant string     `json:"merchant"`
	Status   string     `json:"status"`
}

type dashboardJSON struct {
	Cursor         cursorJSON       `json:"cursor"`
	MonthSpend     moneyJSON        `json:"month_spend"`
	PrevMonthSpend moneyJSON        `json:"prev_month_spend"`
	Delta          *deltaJSON       `json:"delta"`
	Receipts       []receiptJSON    `json:"receipts"`
	Daily          []dailyPointJSON `json:"daily"`
	Categories     []breakdownJSON  `json:"categories"`
	Merchants      []breakdownJSON  `json:"merchants"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Euros: formatEuros(m.Cents)}
}

func toCursorJSON(c stats.Cursor) cursorJSON {
	return cursorJSON{Year: c.Year, Month: c.Month, Label: c.String()}
}

func toDeltaJSON(d *stats.MonthDelta) *deltaJSON {
	if d == nil {
		return nil
	}
	return &deltaJSON{Percent: d.PercentAbsolute, Increase: d.Increase}
}

func toBreakdownJSON(entries []stats.BreakdownEntry) []breakdownJSON {
	out := make([]breakdownJSON, len(entries))
	for i, e := range entries {
		out[i] = breakdownJSON{Name: e.Name, Total: toMoneyJSON(e.Total), PercentOfMax: e.PercentOfMax}
	}
	return out
}

func toReceiptJSON(r core.Receipt) receiptJSON {
	out := receiptJSON{
		ID:       r.ID,
		Date:     r.Date,
		Category: r.CategoryLabel(),
		Merchant: r.MerchantLabel(),
		Status:   string(r.Status),
	}
	if r.Amount != nil {
		m := toMoneyJSON(*r.Amount)
		out.Amount = &m
	}
	return out
}

func toDashboardJSON(v stats.Views) dashboardJSON {
	daily := make([]dailyPointJSON, len(v.Daily))
	for i, p := range v.Daily {
		daily[i] = dailyPointJSON{Day: p.Day, Amount: toMoneyJSON(p.Amount), Cumulative: toMoneyJSON(p.Cumulative)}
	}
	receipts := make([]receiptJSON, len(v.Receipts))
	for i, r := range v.Receipts {
		receipts[i] = toReceiptJSON(r)
	}
	return dashboardJSON{
		Cursor:         toCursorJSON(v.Cursor),
		MonthSpend:     toMoneyJSON(v.MonthSpend),
		PrevMonthSpend: toMoneyJSON(v.PrevMonthSpend),
		Delta:          toDeltaJSON(v.Delta),
		Receipts:       receipts,
		Daily:          daily,
		Categories:     toBreakdownJSON(v.Categories),
		Merchants:      toBreakdownJSON(v.Merchants),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), msg, applog.FieldError, err.Error())
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
