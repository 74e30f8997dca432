// Package worker contains the long-running loops that keep the stats
// engine and the shared summary sheet in step with the receipt store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ricevute/internal/amqp"
	"ricevute/internal/receipts"
	"ricevute/internal/stats"
)

// ReceiptSource is the store surface the refresher needs: single
// lookups to verify announced receipts and full snapshots to feed the
// engine.
type ReceiptSource interface {
	receipts.Getter
	receipts.SnapshotReader
}

// Refresher pushes fresh store snapshots into the stats engine whenever
// the extraction backend announces a change, with a periodic reload as
// backup for lost messages.
type Refresher struct {
	store  ReceiptSource
	engine *stats.Engine

	amqpURL      string
	amqpExchange string
	amqpQueue    string
	interval     time.Duration
}

func NewRefresher(store ReceiptSource, engine *stats.Engine, amqpURL, exchange, queue string, interval time.Duration) *Refresher {
	return &Refresher{
		store:        store,
		engine:       engine,
		amqpURL:      amqpURL,
		amqpExchange: exchange,
		amqpQueue:    queue,
		interval:     interval,
	}
}

// Refresh loads the full snapshot and hands it to the engine. Called at
// startup, on every receipt event and on the fallback ticker; the engine
// coalesces bursts on its side.
func (r *Refresher) Refresh(ctx context.Context) error {
	snapshot, err := r.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load receipt snapshot: %w", err)
	}
	r.engine.SetSnapshot(snapshot)
	slog.DebugContext(ctx, "Engine snapshot refreshed", "receipts", len(snapshot))
	return nil
}

// HandleEvent reacts to one receipt change announcement. Upsert events
// load the receipt by ID first: the extraction backend owns the write,
// so the lookup confirms the record landed before the engine refreshes,
// and its outcome is logged for tracing a receipt through the pipeline.
// A missing record is not an error; the event may have raced a delete,
// and the snapshot reload settles the final state either way.
func (r *Refresher) HandleEvent(ctx context.Context, msg *amqp.ReceiptEventMessage) error {
	switch msg.Kind {
	case amqp.KindUpserted:
		rec, err := r.store.Get(ctx, msg.ID)
		if err != nil {
			slog.WarnContext(ctx, "Announced receipt not in store",
				"id", msg.ID,
				"error", err)
			break
		}
		slog.InfoContext(ctx, "Receipt event received",
			"id", rec.ID,
			"kind", msg.Kind,
			"status", rec.Status,
			"has_amount", rec.HasAmount())
	case amqp.KindDeleted:
		slog.InfoContext(ctx, "Receipt event received",
			"id", msg.ID,
			"kind", msg.Kind)
	default:
		// Validation upstream rejects unknown kinds; drop just in case.
		slog.WarnContext(ctx, "Ignoring receipt event of unknown kind",
			"id", msg.ID,
			"kind", msg.Kind)
		return nil
	}
	return r.Refresh(ctx)
}

// Run blocks until ctx is cancelled, consuming receipt events and
// refreshing on the fallback interval. When no AMQP URL is configured it
// degrades to the ticker alone.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if r.amqpURL != "" {
		g.Go(func() error {
			handler := func(msg *amqp.ReceiptEventMessage) error {
				return r.HandleEvent(ctx, msg)
			}
			return amqp.ConsumeWithReconnect(ctx, r.amqpURL, r.amqpExchange, r.amqpQueue, handler)
		})
	} else {
		slog.InfoContext(ctx, "AMQP disabled, relying on periodic refresh only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := r.Refresh(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
