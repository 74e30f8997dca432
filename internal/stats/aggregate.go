package stats

import (
	"math"
	"sort"

	"ricevute/internal/core"
)

// SelectMonthReceipts filters the snapshot to receipts whose resolved
// date falls in the cursor's month. Snapshot order is preserved; the
// store owns overall ordering by recency.
func SelectMonthReceipts(snapshot []core.Receipt, c Cursor) []core.Receipt {
	var selected []core.Receipt
	for _, r := range snapshot {
		d, ok := r.ResolvedDate()
		if !ok {
			continue
		}
		if c.Contains(d) {
			selected = append(selected, r)
		}
	}
	return selected
}

// DailySeries buckets the selected month's spend by day of month and
// accumulates a running total left to right. The series always has one
// point per calendar day, zeros included, so charts show gaps.
func DailySeries(selected []core.Receipt, c Cursor) []DailyPoint {
	days := c.DaysInMonth()
	buckets := make([]int64, days)

	for _, r := range selected {
		if !r.HasAmount() {
			continue
		}
		d, ok := r.ResolvedDate()
		if !ok || !c.Contains(d) {
			continue
		}
		day := d.Day()
		if day < 1 || day > days {
			continue
		}
		buckets[day-1] += r.Amount.Cents
	}

	series := make([]DailyPoint, days)
	var running int64
	for i, amount := range buckets {
		running += amount
		series[i] = DailyPoint{
			Day:        i + 1,
			Amount:     core.Money{Cents: amount},
			Cumulative: core.Money{Cents: running},
		}
	}
	return series
}

// MonthSpend sums receipt totals for the given year and zero-based
// month. Receipts without a usable amount contribute nothing.
func MonthSpend(snapshot []core.Receipt, year, month int) core.Money {
	c := Cursor{Year: year, Month: month}
	var total int64
	for _, r := range snapshot {
		if !r.HasAmount() {
			continue
		}
		d, ok := r.ResolvedDate()
		if !ok || !c.Contains(d) {
			continue
		}
		total += r.Amount.Cents
	}
	return core.Money{Cents: total}
}

// MonthOverMonth compares spend against the preceding month. It returns
// nil when the previous month's spend is zero; no change (percent == 0)
// reports Increase=false.
func MonthOverMonth(current, previous core.Money) *MonthDelta {
	if previous.Cents == 0 {
		return nil
	}
	percent := (float64(current.Cents-previous.Cents) / float64(previous.Cents)) * 100
	return &MonthDelta{
		PercentAbsolute: int(math.Round(math.Abs(percent))),
		Increase:        percent > 0,
	}
}

// Breakdown groups the selected receipts by keyFn, sums totals and keeps
// the topN groups by total descending. PercentOfMax divides by the
// largest total, floored at 1 cent so an all-zero month yields 0 rather
// than NaN. Ties sort by name for deterministic output.
func Breakdown(selected []core.Receipt, keyFn func(core.Receipt) string, topN int) []BreakdownEntry {
	totals := make(map[string]int64)
	for _, r := range selected {
		key := keyFn(r)
		if !r.HasAmount() {
			// Group still appears in the rollup, just with no spend.
			totals[key] += 0
			continue
		}
		totals[key] += r.Amount.Cents
	}

	entries := make([]BreakdownEntry, 0, len(totals))
	var maxTotal int64
	for name, total := range totals {
		entries = append(entries, BreakdownEntry{Name: name, Total: core.Money{Cents: total}})
		if total > maxTotal {
			maxTotal = total
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total.Cents != entries[j].Total.Cents {
			return entries[i].Total.Cents > entries[j].Total.Cents
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}

	denom := maxTotal
	if denom < 1 {
		denom = 1
	}
	for i := range entries {
		entries[i].PercentOfMax = 100 * float64(entries[i].Total.Cents) / float64(denom)
	}
	return entries
}

// Compute derives every view from one (snapshot, cursor) pair. It is a
// pure function: same inputs, same Views, no hidden state.
func Compute(snapshot []core.Receipt, c Cursor) Views {
	selected := SelectMonthReceipts(snapshot, c)
	prev := c.Prev()

	current := MonthSpend(snapshot, c.Year, c.Month)
	previous := MonthSpend(snapshot, prev.Year, prev.Month)

	return Views{
		Cursor:         c,
		Receipts:       selected,
		MonthSpend:     current,
		PrevMonthSpend: previous,
		Daily:          DailySeries(selected, c),
		Delta:          MonthOverMonth(current, previous),
		Categories:     Breakdown(selected, core.Receipt.CategoryLabel, TopN),
		Merchants:      Breakdown(selected, core.Receipt.MerchantLabel, TopN),
	}
}
