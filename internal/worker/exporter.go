package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ricevute/internal/receipts"
	"ricevute/internal/sheets"
	"ricevute/internal/stats"
)

// Exporter periodically shares the previous month's summary to the
// configured destination. It recomputes views straight from the store so
// it needs no live engine of its own.
type Exporter struct {
	store    receipts.SnapshotReader
	pending  PendingCounter
	summary  sheets.SummaryWriter
	interval time.Duration

	now func() time.Time
}

// PendingCounter reports how many receipts still await extraction; the
// exporter logs it so stale extraction pipelines are visible.
type PendingCounter interface {
	CountPending(ctx context.Context) (int, error)
}

func NewExporter(store receipts.SnapshotReader, pending PendingCounter, summary sheets.SummaryWriter, interval time.Duration) *Exporter {
	return &Exporter{
		store:    store,
		pending:  pending,
		summary:  summary,
		interval: interval,
		now:      time.Now,
	}
}

// ExportPreviousMonth computes the views for the month before the
// current one and appends them as a summary row.
func (e *Exporter) ExportPreviousMonth(ctx context.Context) error {
	snapshot, err := e.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load receipt snapshot: %w", err)
	}

	cursor := stats.CursorFor(e.now()).Prev()
	views := stats.Compute(snapshot, cursor)

	ref, err := e.summary.AppendMonthlySummary(ctx, views)
	if err != nil {
		return fmt.Errorf("append monthly summary: %w", err)
	}

	slog.InfoContext(ctx, "Monthly summary exported",
		"month", cursor.String(),
		"spend_cents", views.MonthSpend.Cents,
		"row_ref", ref)
	return nil
}

// Run exports once at startup and then on every tick until ctx is
// cancelled. Export failures are logged and retried next tick rather
// than stopping the worker.
func (e *Exporter) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.ExportPreviousMonth(ctx); err != nil {
			slog.ErrorContext(ctx, "Startup summary export failed", "error", err)
		}

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := e.ExportPreviousMonth(ctx); err != nil {
					slog.ErrorContext(ctx, "Summary export failed", "error", err)
				}
			}
		}
	})

	if e.pending != nil {
		g.Go(func() error {
			ticker := time.NewTicker(e.interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					n, err := e.pending.CountPending(ctx)
					if err != nil {
						slog.ErrorContext(ctx, "Pending count failed", "error", err)
						continue
					}
					if n > 0 {
						slog.WarnContext(ctx, "Receipts still waiting for extraction", "count", n)
					}
				}
			}
		})
	}

	return g.Wait()
}
