package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ricevute/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("receipt not found")

// SQLiteRepository is the durable receipt store. It implements the
// receipts ports; soft-deleted records drop out of Snapshot but stay in
// the table.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Upsert implements receipts.Writer.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec core.Receipt) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validate receipt: %w", err)
	}

	var amount sql.NullInt64
	if rec.Amount != nil {
		amount = sql.NullInt64{Int64: rec.Amount.Cents, Valid: true}
	}
	var catID, catName, merchCanonical, merchRaw sql.NullString
	if rec.Category != nil {
		catID = sql.NullString{String: rec.Category.ID, Valid: true}
		catName = sql.NullString{String: rec.Category.Name, Valid: true}
	}
	if rec.Merchant != nil {
		merchCanonical = sql.NullString{String: rec.Merchant.CanonicalName, Valid: true}
		merchRaw = sql.NullString{String: rec.Merchant.RawName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (id, amount_cents, txn_date, created_at, category_id, category_name, merchant_canonical, merchant_raw, status, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			txn_date = excluded.txn_date,
			category_id = excluded.category_id,
			category_name = excluded.category_name,
			merchant_canonical = excluded.merchant_canonical,
			merchant_raw = excluded.merchant_raw,
			status = excluded.status,
			deleted_at = NULL`,
		rec.ID, amount, rec.Date, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		catID, catName, merchCanonical, merchRaw, string(rec.Status))
	if err != nil {
		return fmt.Errorf("upsert receipt: %w", err)
	}

	slog.InfoContext(ctx, "Receipt saved to SQLite",
		"id", rec.ID,
		"status", rec.Status,
		"has_amount", rec.Amount != nil)

	return nil
}

// Delete implements receipts.Deleter as a soft delete.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("soft delete receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	return nil
}

// Get implements receipts.Getter. Soft-deleted records are not found.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Receipt, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? AND deleted_at IS NULL`, id)
	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Receipt{}, fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Receipt{}, fmt.Errorf("get receipt: %w", err)
	}
	return rec, nil
}

// Snapshot implements receipts.SnapshotReader: the full active record
// set, most recent first.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]core.Receipt, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE deleted_at IS NULL ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []core.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return out, nil
}

// CountPending returns how many records are still waiting for extraction,
// used by the worker's startup re-scan.
func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM receipts WHERE deleted_at IS NULL AND status IN (?, ?)`,
		string(core.StatusUploaded), string(core.StatusProcessing)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending receipts: %w", err)
	}
	return n, nil
}

const selectColumns = `SELECT id, amount_cents, txn_date, created_at, category_id, category_name, merchant_canonical, merchant_raw, status FROM receipts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (core.Receipt, error) {
	var (
		rec            core.Receipt
		amount         sql.NullInt64
		createdAt      string
		catID, catName sql.NullString
		merchCanonical sql.NullString
		merchRaw       sql.NullString
		status         string
	)
	err := row.Scan(&rec.ID, &amount, &rec.Date, &createdAt, &catID, &catName, &merchCanonical, &merchRaw, &status)
	if err != nil {
		return core.Receipt{}, err
	}
	if amount.Valid {
		rec.Amount = &core.Money{Cents: amount.Int64}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if catID.Valid || catName.Valid {
		rec.Category = &core.Category{ID: catID.String, Name: catName.String}
	}
	if merchCanonical.Valid || merchRaw.Valid {
		rec.Merchant = &core.Merchant{CanonicalName: merchCanonical.String, RawName: merchRaw.String}
	}
	rec.Status = core.ReceiptStatus(status)
	return rec, nil
}
