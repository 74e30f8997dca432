package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ricevute/internal/core"
)

// Store is an in-memory receipt backend for development and tests.
// Snapshot order is most recent first, matching the SQLite backend.
type Store struct {
	mu    sync.Mutex
	items []core.Receipt
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds the store from base/seed_receipts.csv when present.
// Each line is "date,amount,category,merchant"; blanks and # comments are
// skipped, and a malformed line is skipped rather than aborting the seed.
func NewFromFiles(base string) *Store {
	s := New()
	f, err := os.Open(filepath.Join(base, "seed_receipts.csv"))
	if err != nil {
		return s
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		r, err := parseSeedLine(line)
		if err != nil {
			continue
		}
		s.items = append(s.items, r)
	}
	return s
}

func parseSeedLine(line string) (core.Receipt, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return core.Receipt{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	cents, err := core.ParseDecimalToCents(fields[1])
	if err != nil {
		return core.Receipt{}, fmt.Errorf("amount %q: %w", fields[1], err)
	}
	r := core.Receipt{
		ID:        uuid.NewString(),
		Amount:    &core.Money{Cents: cents},
		Date:      strings.TrimSpace(fields[0]),
		CreatedAt: time.Now(),
		Status:    core.StatusFinal,
	}
	if name := strings.TrimSpace(fields[2]); name != "" {
		r.Category = &core.Category{ID: strings.ToLower(name), Name: name}
	}
	if name := strings.TrimSpace(fields[3]); name != "" {
		r.Merchant = &core.Merchant{CanonicalName: name, RawName: name}
	}
	return r, nil
}

// Upsert stores the receipt, replacing any record with the same ID in
// place so snapshot order stays stable across updates. The original
// CreatedAt is kept on replacement, matching the SQLite repository,
// so an update never shifts a dateless receipt to another month.
func (s *Store) Upsert(_ context.Context, r core.Receipt) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == r.ID {
			r.CreatedAt = s.items[i].CreatedAt
			s.items[i] = r
			return nil
		}
	}
	// New records go first; recency order mirrors SQLite.
	s.items = append([]core.Receipt{r}, s.items...)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("receipt %s not found", id)
}

func (s *Store) Get(_ context.Context, id string) (core.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.items {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Receipt{}, fmt.Errorf("receipt %s not found", id)
}

// Len reports the number of receipts currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns a copy of the full record set.
func (s *Store) Snapshot(_ context.Context) ([]core.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Receipt, len(s.items))
	copy(out, s.items)
	return out, nil
}
