package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
	"budgetly/internal/storage"
	"budgetly/internal/storage/storagetest"
)

func openSQLite(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budgetly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openSQLite(t)
	})
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "budgetly.db")

	repo, err := storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	e, err := repo.AddExpense(ctx, core.Expense{
		Date:          core.NewDate(2025, 5, 4),
		Amount:        core.Money{Cents: 1999},
		Category:      core.Entertainment,
		PaymentMethod: core.DebitCard,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Migrations are idempotent on an existing file.
	repo, err = storage.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestValidMonth(t *testing.T) {
	assert.True(t, storage.ValidMonth(2025, 1))
	assert.True(t, storage.ValidMonth(2025, 12))
	assert.False(t, storage.ValidMonth(2025, 0))
	assert.False(t, storage.ValidMonth(2025, 13))
	assert.False(t, storage.ValidMonth(0, 5))
}
