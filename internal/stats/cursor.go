// Package stats derives spending statistics from the live receipt set.
//
// Everything in this package is pure computation over in-memory values:
// no I/O, no recoverable errors. Receipts with unusable amounts or dates
// are excluded per record; one bad record never fails a recomputation.
package stats

import "time"

// Cursor selects the month the dashboard is looking at. Month is
// zero-based (January == 0) so month arithmetic rolls through year
// boundaries without special cases.
type Cursor struct {
	Year  int
	Month int
}

// CursorFor returns the cursor of the calendar month containing t.
func CursorFor(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: int(t.Month()) - 1}
}

// Prev returns the cursor one month back, rolling the year at January.
func (c Cursor) Prev() Cursor {
	if c.Month == 0 {
		return Cursor{Year: c.Year - 1, Month: 11}
	}
	return Cursor{Year: c.Year, Month: c.Month - 1}
}

// Next returns the cursor one month forward, rolling the year at December.
func (c Cursor) Next() Cursor {
	if c.Month == 11 {
		return Cursor{Year: c.Year + 1, Month: 0}
	}
	return Cursor{Year: c.Year, Month: c.Month + 1}
}

// DaysInMonth returns the number of calendar days in the cursor's month,
// leap years included.
func (c Cursor) DaysInMonth() int {
	// Day zero of the following month is the last day of this one.
	return time.Date(c.Year, time.Month(c.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls in the cursor's month.
func (c Cursor) Contains(t time.Time) bool {
	return t.Year() == c.Year && int(t.Month())-1 == c.Month
}

// Valid reports whether the month index is in range. Out-of-range months
// are a programming error; the engine panics on them at its public
// boundary rather than clamping inside the aggregation math.
func (c Cursor) Valid() bool {
	return c.Month >= 0 && c.Month <= 11
}

func (c Cursor) String() string {
	return time.Date(c.Year, time.Month(c.Month+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
