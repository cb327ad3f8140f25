package memory

import (
	"testing"

	"budgetly/internal/storage"
	"budgetly/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}
