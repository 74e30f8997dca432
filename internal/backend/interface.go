// Package backend selects and wires the receipt store implementation.
package backend

import (
	"context"

	"ricevute/internal/receipts"
)

// Backend is the full receipt store surface the server needs.
type Backend interface {
	receipts.Writer
	receipts.Deleter
	receipts.Getter
	receipts.SnapshotReader
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
}

// Type represents the kind of backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
