// Package sheets defines the outbound spreadsheet mirror used by the worker.
package sheets

import (
	"context"

	"budgetly/internal/core"
)

// ExpenseMirror keeps a copy of every expense in an external sheet, one
// row per expense keyed by its ID.
type ExpenseMirror interface {
	// Upsert writes e to its row, appending a row when none exists yet.
	Upsert(ctx context.Context, e core.Expense) error
	// Delete clears the row for id. A missing row is not an error.
	Delete(ctx context.Context, id int64) error
}
