package services

import (
	"context"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
)

type ExpenseService struct {
	notifier
	store storage.ExpenseStore
}

func NewExpenseService(store storage.ExpenseStore, publisher EventPublisher, cache Invalidator) *ExpenseService {
	return &ExpenseService{
		notifier: notifier{publisher: publisher, cache: cache},
		store:    store,
	}
}

// AddExpense stores e and returns it with its assigned ID.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogExpenseCreated(ctx,
		saved.ID, saved.Amount.Cents, string(saved.Category), string(saved.PaymentMethod))

	s.committed(ctx, amqp.NewExpenseEvent(amqp.ExpenseCreated, saved))
	return saved, nil
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// UpdateExpense overwrites every field of the expense with e.ID. The event
// also carries the previous date, since an update can move the expense to
// another month.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) error {
	prev, err := s.store.GetExpense(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return err
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogExpenseUpdated(ctx,
		e.ID, e.Amount.Cents, string(e.Category), string(e.PaymentMethod))

	s.committed(ctx, amqp.NewExpenseUpdatedEvent(prev, e))
	return nil
}

// DeleteExpense removes the expense. The deleted record travels with the
// event so consumers can still see its category and month.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogExpenseDeleted(ctx,
		e.ID, e.Amount.Cents, string(e.Category), string(e.PaymentMethod))

	s.committed(ctx, amqp.NewExpenseEvent(amqp.ExpenseDeleted, e))
	return nil
}
