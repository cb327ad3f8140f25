package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
)

type BudgetService struct {
	notifier
	store storage.BudgetStore
}

func NewBudgetService(store storage.BudgetStore, publisher EventPublisher, cache Invalidator) *BudgetService {
	return &BudgetService{
		notifier: notifier{publisher: publisher, cache: cache},
		store:    store,
	}
}

// UpsertBudget sets both amounts for b.Category.
func (s *BudgetService) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget saved",
		log.FieldComponent, log.ComponentBudget,
		log.FieldOperation, log.OpUpsert,
		log.FieldCategory, string(b.Category),
		log.FieldAmountCents, b.Monthly.Cents)

	s.committed(ctx, amqp.NewBudgetEvent(b))
	return nil
}

func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// ImportBudgets upserts budgets in order and stops at the first failure,
// returning how many were stored.
func (s *BudgetService) ImportBudgets(ctx context.Context, budgets []core.Budget) (int, error) {
	for i, b := range budgets {
		if err := s.UpsertBudget(ctx, b); err != nil {
			return i, fmt.Errorf("import %s budget: %w", b.Category, err)
		}
	}
	return len(budgets), nil
}
