package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ricevute/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ricevute.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func storedReceipt(id string, createdAt time.Time) core.Receipt {
	return core.Receipt{
		ID:        id,
		Amount:    &core.Money{Cents: 1234},
		Date:      "2025-06-01",
		CreatedAt: createdAt,
		Category:  &core.Category{ID: "groceries", Name: "Groceries"},
		Merchant:  &core.Merchant{CanonicalName: "Esselunga", RawName: "ESSELUNGA 042"},
		Status:    core.StatusExtracted,
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ricevute.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// A second run on the same open handle must be a no-op.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if _, err := db.Exec("SELECT id FROM receipts LIMIT 1"); err != nil {
		t.Fatalf("schema missing after migrations: %v", err)
	}
}

func TestUpsertGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := storedReceipt("r-1", time.Now().UTC())
	if err := repo.Upsert(ctx, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, "r-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != want.ID || got.Date != want.Date || got.Status != want.Status {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Amount == nil || got.Amount.Cents != 1234 {
		t.Fatalf("amount = %+v", got.Amount)
	}
	if got.Category == nil || got.Category.Name != "Groceries" {
		t.Fatalf("category = %+v", got.Category)
	}
	if got.Merchant == nil || got.Merchant.CanonicalName != "Esselunga" {
		t.Fatalf("merchant = %+v", got.Merchant)
	}
}

func TestUpsertReplacesAndKeepsNilFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// First write: bare upload, nothing extracted yet.
	bare := core.Receipt{ID: "r-1", CreatedAt: time.Now().UTC(), Status: core.StatusUploaded}
	if err := repo.Upsert(ctx, bare); err != nil {
		t.Fatalf("upsert bare: %v", err)
	}
	got, _ := repo.Get(ctx, "r-1")
	if got.Amount != nil || got.Category != nil || got.Merchant != nil {
		t.Fatalf("optional fields must stay nil: %+v", got)
	}

	// Extraction result replaces the record.
	if err := repo.Upsert(ctx, storedReceipt("r-1", bare.CreatedAt)); err != nil {
		t.Fatalf("upsert extracted: %v", err)
	}
	got, _ = repo.Get(ctx, "r-1")
	if got.Status != core.StatusExtracted || got.Amount == nil {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestSnapshotOrderAndSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := repo.Upsert(ctx, storedReceipt(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	snap, err := repo.Snapshot(ctx)
	if err != nil || len(snap) != 3 {
		t.Fatalf("snapshot: %v len=%d", err, len(snap))
	}
	if snap[0].ID != "new" || snap[2].ID != "old" {
		t.Fatalf("expected recency order, got %s..%s", snap[0].ID, snap[2].ID)
	}

	if err := repo.Delete(ctx, "mid"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap, _ = repo.Snapshot(ctx)
	if len(snap) != 2 {
		t.Fatalf("soft-deleted record still in snapshot: %d", len(snap))
	}
	if _, err := repo.Get(ctx, "mid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "mid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestCountPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_ = repo.Upsert(ctx, core.Receipt{ID: "a", CreatedAt: now, Status: core.StatusUploaded})
	_ = repo.Upsert(ctx, core.Receipt{ID: "b", CreatedAt: now, Status: core.StatusProcessing})
	_ = repo.Upsert(ctx, storedReceipt("c", now))

	n, err := repo.CountPending(ctx)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if n != 2 {
		t.Fatalf("pending = %d, want 2", n)
	}
}
