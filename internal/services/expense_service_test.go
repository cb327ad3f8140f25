package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/storage/memory"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []amqp.Event
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, ev amqp.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) types() []amqp.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]amqp.EventType, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

func lunch() core.Expense {
	return core.Expense{
		Date:          core.NewDate(2025, 3, 4),
		Amount:        core.Money{Cents: 1250},
		Category:      core.Food,
		PaymentMethod: core.DebitCard,
	}
}

func TestExpenseService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	inv := &countingInvalidator{}
	svc := NewExpenseService(memory.New(), pub, inv)

	e, err := svc.AddExpense(ctx, lunch())
	require.NoError(t, err)
	require.NotZero(t, e.ID)

	e.Amount = core.Money{Cents: 1500}
	e.Date = core.NewDate(2025, 4, 1)
	require.NoError(t, svc.UpdateExpense(ctx, e))

	updated := pub.events[1]
	assert.Equal(t, "2025-04-01", updated.Date)
	assert.Equal(t, "2025-03-04", updated.PrevDate, "update event keeps the month the expense left")

	got, err := svc.GetExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.Amount.Cents)

	require.NoError(t, svc.DeleteExpense(ctx, e.ID))

	all, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.Equal(t, []amqp.EventType{amqp.ExpenseCreated, amqp.ExpenseUpdated, amqp.ExpenseDeleted}, pub.types())
	assert.Equal(t, 3, inv.n)

	deleted := pub.events[2]
	assert.Equal(t, e.ID, deleted.ExpenseID)
	assert.Equal(t, "Food", deleted.Category, "delete event keeps the removed record")
}

func TestExpenseService_FailuresHaveNoSideEffects(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	inv := &countingInvalidator{}
	svc := NewExpenseService(memory.New(), pub, inv)

	bad := lunch()
	bad.Amount = core.Money{}
	_, err := svc.AddExpense(ctx, bad)
	assert.True(t, core.IsValidation(err))

	missing := lunch()
	missing.ID = 99
	assert.True(t, core.IsNotFound(svc.UpdateExpense(ctx, missing)))
	assert.True(t, core.IsNotFound(svc.DeleteExpense(ctx, 99)))

	assert.Empty(t, pub.types())
	assert.Zero(t, inv.n)
}

func TestExpenseService_PublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	inv := &countingInvalidator{}
	svc := NewExpenseService(memory.New(), pub, inv)

	e, err := svc.AddExpense(ctx, lunch())
	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.Equal(t, 1, inv.n, "cache is still invalidated")
}

func TestExpenseService_WithoutCollaborators(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil, nil)
	_, err := svc.AddExpense(context.Background(), lunch())
	assert.NoError(t, err)
}

func TestBudgetService(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	inv := &countingInvalidator{}
	svc := NewBudgetService(memory.New(), pub, inv)

	require.NoError(t, svc.UpsertBudget(ctx, core.Budget{Category: core.Rent, Monthly: core.Money{Cents: 90000}}))

	err := svc.UpsertBudget(ctx, core.Budget{Category: core.Rent, Monthly: core.Money{Cents: -1}})
	assert.True(t, core.IsValidation(err))

	budgets, err := svc.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, int64(90000), budgets[0].Monthly.Cents)
	assert.Equal(t, []amqp.EventType{amqp.BudgetUpserted}, pub.types())
	assert.Equal(t, 1, inv.n)
}

func TestBudgetService_ImportStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewBudgetService(memory.New(), nil, nil)

	n, err := svc.ImportBudgets(ctx, []core.Budget{
		{Category: core.Food, Monthly: core.Money{Cents: 100}},
		{Category: core.Category("Pets"), Monthly: core.Money{Cents: 100}},
		{Category: core.Rent, Monthly: core.Money{Cents: 100}},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "import Pets budget")

	budgets, err := svc.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}

func TestIncomeService(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewIncomeService(memory.New(), pub, nil)

	in, err := svc.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 250000}, Source: "  Salary "})
	require.NoError(t, err)
	assert.Equal(t, "Salary", in.Source)

	_, err = svc.AddIncome(ctx, core.Income{Date: core.NewDate(2025, 2, 1), Amount: core.Money{Cents: 100}, Source: " "})
	assert.True(t, core.IsValidation(err))

	total, err := svc.TotalIncome(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), total.Cents)

	list, err := svc.ListIncome(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []amqp.EventType{amqp.IncomeAdded}, pub.types())
}
