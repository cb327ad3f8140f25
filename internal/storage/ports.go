package storage

import (
	"context"

	"budgetly/internal/core"
)

// Ports implemented by every persistence backend.
type (
	ExpenseStore interface {
		// AddExpense validates and stores e, returning it with its new ID.
		AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// ListExpenses returns every expense, newest date first.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		// UpdateExpense overwrites all fields of the expense with e.ID.
		// It fails with core.KindNotFound when the ID does not exist.
		UpdateExpense(ctx context.Context, e core.Expense) error
		// DeleteExpense fails with core.KindNotFound when the ID does not exist.
		DeleteExpense(ctx context.Context, id int64) error
	}

	BudgetStore interface {
		// UpsertBudget inserts b or overwrites both amounts of the existing
		// budget for b.Category.
		UpsertBudget(ctx context.Context, b core.Budget) error
		// ListBudgets returns one budget per category, ordered by category.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	IncomeStore interface {
		AddIncome(ctx context.Context, in core.Income) (core.Income, error)
		// ListIncome returns every income record, newest date first.
		ListIncome(ctx context.Context) ([]core.Income, error)
		// TotalIncome is zero when there is no income.
		TotalIncome(ctx context.Context) (core.Money, error)
	}

	// SpendingReader aggregates expenses for a calendar month.
	SpendingReader interface {
		MonthlySpendingByCategory(ctx context.Context, year, month int) (map[core.Category]core.Money, error)
	}

	Store interface {
		ExpenseStore
		BudgetStore
		IncomeStore
		SpendingReader
		Ping(ctx context.Context) error
		Close() error
	}
)

// ValidMonth reports whether year/month can be used as a spending period.
func ValidMonth(year, month int) bool {
	return year >= 1 && year <= 9999 && month >= 1 && month <= 12
}
