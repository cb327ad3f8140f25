// Package storagetest holds the behavior every storage.Store must show.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
	"budgetly/internal/storage"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Store

func usd(cents int64) core.Money { return core.Money{Cents: cents} }

func newExpense(cents int64, c core.Category, d core.Date) core.Expense {
	return core.Expense{Date: d, Amount: usd(cents), Category: c, PaymentMethod: core.Cash}
}

// Run exercises newStore against the shared store contract.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"AddExpenseAssignsIDs", testAddExpenseAssignsIDs},
		{"AddExpenseRejectsInvalid", testAddExpenseRejectsInvalid},
		{"ListExpensesNewestFirst", testListExpensesNewestFirst},
		{"GetExpenseNotFound", testGetExpenseNotFound},
		{"UpdateExpense", testUpdateExpense},
		{"UpdateMissingExpense", testUpdateMissingExpense},
		{"DeleteExpense", testDeleteExpense},
		{"DeleteMissingExpense", testDeleteMissingExpense},
		{"AmountsRoundTripExactly", testAmountsRoundTrip},
		{"UpsertBudgetOverwrites", testUpsertBudgetOverwrites},
		{"UpsertBudgetAllowsZero", testUpsertBudgetAllowsZero},
		{"UpsertBudgetRejectsNegative", testUpsertBudgetRejectsNegative},
		{"AmountsAboveColumnLimitRejected", testAmountsAboveColumnLimit},
		{"MonthlySpendingByCategory", testMonthlySpending},
		{"MonthlySpendingRejectsBadPeriod", testMonthlySpendingBadPeriod},
		{"Income", testIncome},
		{"IncomeRejectsInvalid", testIncomeRejectsInvalid},
		{"Ping", testPing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			tt.fn(t, s)
		})
	}
}

func testAddExpenseAssignsIDs(t *testing.T, s storage.Store) {
	ctx := context.Background()
	a, err := s.AddExpense(ctx, newExpense(1050, core.Food, core.NewDate(2025, 3, 1)))
	require.NoError(t, err)
	b, err := s.AddExpense(ctx, newExpense(200, core.Transport, core.NewDate(2025, 3, 2)))
	require.NoError(t, err)

	assert.Positive(t, a.ID)
	assert.Greater(t, b.ID, a.ID)

	got, err := s.GetExpense(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func testAddExpenseRejectsInvalid(t *testing.T, s storage.Store) {
	ctx := context.Background()
	cases := []core.Expense{
		newExpense(0, core.Food, core.NewDate(2025, 3, 1)),
		newExpense(-100, core.Food, core.NewDate(2025, 3, 1)),
		newExpense(100, core.Category("Groceries"), core.NewDate(2025, 3, 1)),
		{Date: core.NewDate(2025, 3, 1), Amount: usd(100), Category: core.Food, PaymentMethod: "Cheque"},
		{Amount: usd(100), Category: core.Food, PaymentMethod: core.Cash},
	}
	for _, e := range cases {
		_, err := s.AddExpense(ctx, e)
		require.Error(t, err)
		assert.True(t, core.IsValidation(err), "want validation error, got %v", err)
	}

	all, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testListExpensesNewestFirst(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, d := range []core.Date{
		core.NewDate(2025, 1, 15),
		core.NewDate(2025, 3, 1),
		core.NewDate(2024, 12, 31),
		core.NewDate(2025, 3, 1),
	} {
		_, err := s.AddExpense(ctx, newExpense(100, core.Other, d))
		require.NoError(t, err)
	}

	all, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		assert.False(t, cur.Date.After(prev.Date.Time), "expenses must be newest first")
		if cur.Date.Equal(prev.Date.Time) {
			assert.Less(t, cur.ID, prev.ID)
		}
	}
}

func testGetExpenseNotFound(t *testing.T, s storage.Store) {
	_, err := s.GetExpense(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func testUpdateExpense(t *testing.T, s storage.Store) {
	ctx := context.Background()
	e, err := s.AddExpense(ctx, newExpense(1000, core.Food, core.NewDate(2025, 3, 1)))
	require.NoError(t, err)

	e.Amount = usd(4599)
	e.Category = core.Entertainment
	e.PaymentMethod = core.CreditCard
	e.Date = core.NewDate(2025, 2, 28)
	require.NoError(t, s.UpdateExpense(ctx, e))

	got, err := s.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	bad := e
	bad.Amount = usd(0)
	err = s.UpdateExpense(ctx, bad)
	assert.True(t, core.IsValidation(err))

	got, err = s.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got, "failed update must not change the record")
}

func testUpdateMissingExpense(t *testing.T, s storage.Store) {
	e := newExpense(100, core.Food, core.NewDate(2025, 3, 1))
	e.ID = 42
	err := s.UpdateExpense(context.Background(), e)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func testDeleteExpense(t *testing.T, s storage.Store) {
	ctx := context.Background()
	keep, err := s.AddExpense(ctx, newExpense(100, core.Food, core.NewDate(2025, 3, 1)))
	require.NoError(t, err)
	drop, err := s.AddExpense(ctx, newExpense(200, core.Rent, core.NewDate(2025, 3, 2)))
	require.NoError(t, err)

	require.NoError(t, s.DeleteExpense(ctx, drop.ID))

	all, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Expense{keep}, all)
}

func testDeleteMissingExpense(t *testing.T, s storage.Store) {
	err := s.DeleteExpense(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func testAmountsRoundTrip(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, cents := range []int64{1, 10, 99, 12345, core.MaxAmount.Cents} {
		e, err := s.AddExpense(ctx, newExpense(cents, core.Utilities, core.NewDate(2025, 6, 1)))
		require.NoError(t, err)
		got, err := s.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, cents, got.Amount.Cents)
	}
}

func testUpsertBudgetOverwrites(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{Category: core.Food, Monthly: usd(50000), Annual: usd(600000)}))
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{Category: core.Transport, Monthly: usd(10000), Annual: usd(120000)}))
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{Category: core.Food, Monthly: usd(40000), Annual: usd(480000)}))

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{
		{Category: core.Food, Monthly: usd(40000), Annual: usd(480000)},
		{Category: core.Transport, Monthly: usd(10000), Annual: usd(120000)},
	}, budgets)
}

func testUpsertBudgetAllowsZero(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.UpsertBudget(ctx, core.Budget{Category: core.Rent}))

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Zero(t, budgets[0].Monthly.Cents)
}

func testUpsertBudgetRejectsNegative(t *testing.T, s storage.Store) {
	err := s.UpsertBudget(context.Background(), core.Budget{Category: core.Food, Monthly: usd(-1)})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func testAmountsAboveColumnLimit(t *testing.T, s storage.Store) {
	ctx := context.Background()
	tooLarge := core.MaxAmount.Cents + 1

	err := s.UpsertBudget(ctx, core.Budget{Category: core.Rent, Monthly: core.MaxAmount, Annual: usd(core.MaxAmount.Cents * 12)})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err), "annual above the column limit: %v", err)

	_, err = s.AddExpense(ctx, newExpense(tooLarge, core.Rent, core.NewDate(2025, 6, 1)))
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	_, err = s.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 6, 1), Amount: usd(tooLarge), Source: "Bonus"})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	budgets, err := s.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)
	expenses, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func testMonthlySpending(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, e := range []core.Expense{
		newExpense(10000, core.Food, core.NewDate(2025, 3, 1)),
		newExpense(5050, core.Food, core.NewDate(2025, 3, 31)),
		newExpense(3000, core.Transport, core.NewDate(2025, 3, 15)),
		newExpense(9900, core.Food, core.NewDate(2025, 4, 1)),
		newExpense(7700, core.Food, core.NewDate(2024, 3, 10)),
	} {
		_, err := s.AddExpense(ctx, e)
		require.NoError(t, err)
	}

	got, err := s.MonthlySpendingByCategory(ctx, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, map[core.Category]core.Money{
		core.Food:      usd(15050),
		core.Transport: usd(3000),
	}, got)

	empty, err := s.MonthlySpendingByCategory(ctx, 2023, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testMonthlySpendingBadPeriod(t *testing.T, s storage.Store) {
	_, err := s.MonthlySpendingByCategory(context.Background(), 2025, 13)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func testIncome(t *testing.T, s storage.Store) {
	ctx := context.Background()

	total, err := s.TotalIncome(ctx)
	require.NoError(t, err)
	assert.Zero(t, total.Cents)

	a, err := s.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 1, 31), Amount: usd(300000), Source: "Salary"})
	require.NoError(t, err)
	b, err := s.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 2, 14), Amount: usd(12550), Source: "Freelance"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	list, err := s.ListIncome(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Income{b, a}, list)

	total, err = s.TotalIncome(ctx)
	require.NoError(t, err)
	assert.Equal(t, usd(312550), total)
}

func testIncomeRejectsInvalid(t *testing.T, s storage.Store) {
	ctx := context.Background()
	_, err := s.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 1, 1), Amount: usd(100), Source: "  "})
	assert.True(t, core.IsValidation(err))
	_, err = s.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 1, 1), Amount: usd(0), Source: "Gift"})
	assert.True(t, core.IsValidation(err))
}

func testPing(t *testing.T, s storage.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
