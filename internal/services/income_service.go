package services

import (
	"context"
	"log/slog"
	"strings"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
)

type IncomeService struct {
	notifier
	store storage.IncomeStore
}

func NewIncomeService(store storage.IncomeStore, publisher EventPublisher, cache Invalidator) *IncomeService {
	return &IncomeService{
		notifier: notifier{publisher: publisher, cache: cache},
		store:    store,
	}
}

// AddIncome stores in with its source trimmed.
func (s *IncomeService) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in.Source = strings.TrimSpace(in.Source)
	saved, err := s.store.AddIncome(ctx, in)
	if err != nil {
		return core.Income{}, err
	}
	slog.InfoContext(ctx, "Income recorded",
		log.FieldComponent, log.ComponentIncome,
		log.FieldOperation, log.OpCreate,
		log.FieldIncomeID, saved.ID,
		log.FieldAmountCents, saved.Amount.Cents)

	s.committed(ctx, amqp.NewIncomeEvent(saved))
	return saved, nil
}

func (s *IncomeService) ListIncome(ctx context.Context) ([]core.Income, error) {
	return s.store.ListIncome(ctx)
}

func (s *IncomeService) TotalIncome(ctx context.Context) (core.Money, error) {
	return s.store.TotalIncome(ctx)
}
