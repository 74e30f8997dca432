package stats

import (
	"fmt"
	"sync"
	"time"

	"ricevute/internal/core"
)

// Engine holds the latest receipt snapshot and month cursor and memoizes
// the views derived from them. Mutations only invalidate; the actual
// recomputation happens in Views, at most once per (snapshot, cursor)
// pair. Rapid navigation and snapshot pushes therefore coalesce: states
// nobody reads are never computed, and a reader always sees the views of
// the latest pair.
type Engine struct {
	mu       sync.Mutex
	snapshot []core.Receipt
	cursor   Cursor
	cached   Views
	dirty    bool
	subs     []chan struct{}

	now func() time.Time
}

// NewEngine returns an engine positioned on the current calendar month
// with an empty snapshot.
func NewEngine() *Engine {
	e := &Engine{now: time.Now, dirty: true}
	e.cursor = CursorFor(e.now())
	return e
}

// SetSnapshot replaces the full receipt set. The store always pushes a
// complete materialized set, never a diff, so the swap is atomic under
// the lock and a recomputation can never observe a torn snapshot.
func (e *Engine) SetSnapshot(receipts []core.Receipt) {
	e.mu.Lock()
	e.snapshot = receipts
	e.dirty = true
	e.mu.Unlock()
	e.notify()
}

// Views returns the derived views for the latest (snapshot, cursor)
// pair, recomputing only when something changed since the last call.
func (e *Engine) Views() Views {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dirty {
		e.cached = Compute(e.snapshot, e.cursor)
		e.dirty = false
	}
	return e.cached
}

// Cursor returns the currently selected month.
func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// PrevMonth moves the cursor one month back.
func (e *Engine) PrevMonth() {
	e.moveTo(func(c Cursor) Cursor { return c.Prev() })
}

// NextMonth moves the cursor one month forward.
func (e *Engine) NextMonth() {
	e.moveTo(func(c Cursor) Cursor { return c.Next() })
}

// ResetToCurrent snaps the cursor back to the current calendar month.
func (e *Engine) ResetToCurrent() {
	e.moveTo(func(Cursor) Cursor { return CursorFor(e.now()) })
}

// SelectMonth jumps straight to (year, month) with month zero-based.
// A month outside [0,11] is a caller bug and panics here, at the
// navigator's boundary, so the aggregation math never sees one.
func (e *Engine) SelectMonth(year, month int) {
	c := Cursor{Year: year, Month: month}
	if !c.Valid() {
		panic(fmt.Sprintf("stats: month index %d out of range [0,11]", month))
	}
	e.moveTo(func(Cursor) Cursor { return c })
}

func (e *Engine) moveTo(f func(Cursor) Cursor) {
	e.mu.Lock()
	next := f(e.cursor)
	moved := next != e.cursor
	if moved {
		e.cursor = next
		e.dirty = true
	}
	e.mu.Unlock()
	if moved {
		e.notify()
	}
}

// Subscribe returns a channel that receives a tick whenever the derived
// views may have changed. The channel has capacity one and sends never
// block, so a slow consumer sees bursts collapsed into a single tick and
// re-reads only the final state.
func (e *Engine) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	e.mu.Lock()
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Engine) notify() {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
