package backend

import (
	"context"
	"errors"
	"sync"

	"budgetly/internal/storage"
)

// CleanupFunc releases one resource.
type CleanupFunc func() error

// Result is an opened store plus everything that must be released with it.
type Result struct {
	Store storage.Store

	mu       sync.Mutex
	cleanups []CleanupFunc
}

// AddCleanup registers fn to run on Close. Cleanups run in reverse order
// of registration, so the store registered first is closed last.
func (r *Result) AddCleanup(fn CleanupFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, fn)
}

// Close runs every cleanup once and joins their errors.
func (r *Result) Close() error {
	r.mu.Lock()
	cleanups := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Factory opens a store for a backend configuration.
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds what each backend needs to open.
type Config struct {
	Type Type

	SQLiteDBPath string
	DatabaseURL  string
}

// Type names a storage backend.
type Type string

const (
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
	Memory   Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLite, Postgres, Memory:
		return true
	default:
		return false
	}
}
