package backend

import (
	"context"
	"fmt"

	"budgetly/internal/log"
	"budgetly/internal/storage"
	"budgetly/internal/storage/memory"
	"budgetly/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Create opens the configured store. Persistent backends migrate their
// schema before returning.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLite:
		store, err = f.createSQLite(config)
	case Postgres:
		store, err = f.createPostgres(ctx, config)
	case Memory:
		store = f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Store: store}
	res.AddCleanup(store.Close)
	return res, nil
}

func (f *DefaultFactory) createSQLite(config Config) (storage.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend",
		log.FieldBackend, SQLite.String(),
		"db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createPostgres(ctx context.Context, config Config) (storage.Store, error) {
	repo, err := postgres.Connect(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
	}
	f.logger.Info("Initialized PostgreSQL backend", log.FieldBackend, Postgres.String())
	return repo, nil
}

func (f *DefaultFactory) createMemory() storage.Store {
	f.logger.Warn("Initialized memory backend, data is lost on exit", log.FieldBackend, Memory.String())
	return memory.New()
}
