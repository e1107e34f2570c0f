// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"errors"
)

// Executor is the single capability the models need from the store: run a
// parameterized statement and hand back rows or an affected-row count.
// *sql.DB satisfies it.
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MovieStore is the set of movie operations the HTTP layer depends on.
type MovieStore interface {
	GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, error)
	Insert(ctx context.Context, input MovieInput) (*Movie, error)
	Update(ctx context.Context, id int64, input MovieInput) (*Movie, error)
}

// InventoryStore is the set of inventory operations the HTTP layer depends on.
type InventoryStore interface {
	GetAll(ctx context.Context, filters InventoryFilters) ([]*InventoryItem, error)
	Insert(ctx context.Context, input InventoryInput) (*InventoryItem, error)
	Update(ctx context.Context, id int64, input InventoryInput) (*InventoryItem, error)
	Delete(ctx context.Context, id int64) error
}

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Movies    MovieStore
	Inventory InventoryStore
}

// NewModels constructs a Models value wired up to the given executor, normally
// the *sql.DB pool opened once at startup.
func NewModels(db Executor) Models {
	return Models{
		Movies:    MovieModel{DB: db},
		Inventory: InventoryModel{DB: db},
	}
}

// ErrRecordNotFound is returned when an update or delete matches no row.
var ErrRecordNotFound = errors.New("record not found")

// StoreError wraps any failure reported by the executor. Err carries the
// driver's message, which is surfaced to clients for diagnostics.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// nullString maps a missing or empty string to SQL NULL.
func nullString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
