package receipts

import (
	"context"

	"ricevute/internal/core"
)

// Ports for receipt store backends.
type (
	Writer interface {
		// Upsert inserts the receipt or replaces the stored record with
		// the same ID.
		Upsert(ctx context.Context, r core.Receipt) error
	}

	Deleter interface {
		Delete(ctx context.Context, id string) error
	}

	Getter interface {
		Get(ctx context.Context, id string) (core.Receipt, error)
	}

	// SnapshotReader returns the complete active record set, ordered by
	// recency. The aggregation engine always consumes full snapshots,
	// never diffs.
	SnapshotReader interface {
		Snapshot(ctx context.Context) ([]core.Receipt, error)
	}
)
