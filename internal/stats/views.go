package stats

import "ricevute/internal/core"

// TopN is how many groups the category and merchant breakdowns keep.
const TopN = 5

type (
	// DailyPoint is one day of the selected month. Amount is the spend on
	// that day, Cumulative the running sum from day 1.
	DailyPoint struct {
		Day        int
		Amount     core.Money
		Cumulative core.Money
	}

	// BreakdownEntry is one group of a category or merchant rollup.
	// PercentOfMax scales the group against the largest group, for bar
	// rendering; it is 0 when every group total is zero.
	BreakdownEntry struct {
		Name         string
		Total        core.Money
		PercentOfMax float64
	}

	// MonthDelta is the month-over-month change. It is absent (nil in
	// Views) when the previous month's spend is zero: a percentage from a
	// zero base is undefined, not infinite and not 100%.
	MonthDelta struct {
		PercentAbsolute int
		Increase        bool
	}

	// Views is everything derived from one (snapshot, cursor) pair.
	// Consumers treat a Views value as immutable; a new snapshot or a
	// cursor move produces a fresh one.
	Views struct {
		Cursor         Cursor
		Receipts       []core.Receipt // selected month, snapshot order
		MonthSpend     core.Money
		PrevMonthSpend core.Money
		Daily          []DailyPoint
		Delta          *MonthDelta
		Categories     []BreakdownEntry
		Merchants      []BreakdownEntry
	}
)
