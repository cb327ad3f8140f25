// Package memory is a process-local Store used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"budgetly/internal/core"
	"budgetly/internal/storage"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[int64]core.Expense
	budgets  map[core.Category]core.Budget
	income   []core.Income
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		expenses: make(map[int64]core.Expense),
		budgets:  make(map[core.Category]core.Budget),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.Invalid("add expense", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) ListExpenses(context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, core.NotFound("get expense", "expense", id)
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	const op = "update expense"
	if err := e.Validate(); err != nil {
		return core.Invalid(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return core.NotFound(op, "expense", e.ID)
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return core.NotFound("delete expense", "expense", id)
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return core.Invalid("upsert budget", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.Category] = b
	return nil
}

func (s *Store) ListBudgets(context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	out := make([]core.Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) MonthlySpendingByCategory(ctx context.Context, year, month int) (map[core.Category]core.Money, error) {
	if !storage.ValidMonth(year, month) {
		return nil, core.Invalid("monthly spending", fmt.Errorf("invalid period %04d-%02d", year, month))
	}
	all, _ := s.ListExpenses(ctx)
	return core.SpendingInMonth(all, year, month), nil
}

func (s *Store) AddIncome(_ context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, core.Invalid("add income", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.id()
	s.income = append(s.income, in)
	return in, nil
}

func (s *Store) ListIncome(context.Context) ([]core.Income, error) {
	s.mu.Lock()
	out := append([]core.Income(nil), s.income...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) TotalIncome(context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total core.Money
	for _, in := range s.income {
		total = total.Add(in.Amount)
	}
	return total, nil
}
