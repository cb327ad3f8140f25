package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	"budgetly/internal/storage/memory"
)

type fakeMirror struct {
	upserted []int64
	deleted  []int64
	err      error
}

func (m *fakeMirror) Upsert(_ context.Context, e core.Expense) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, e.ID)
	return nil
}

func (m *fakeMirror) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type fixture struct {
	store  *memory.Store
	mirror *fakeMirror
	logs   *bytes.Buffer
	worker *AlertWorker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	clock := func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	engine := insights.New(store, insights.WithClock(clock))

	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Format: log.FormatJSON, Component: log.ComponentWorker, Output: &buf})
	mirror := &fakeMirror{}

	require.NoError(t, store.UpsertBudget(context.Background(), core.Budget{Category: core.Food, Monthly: core.Money{Cents: 10000}}))
	return &fixture{store: store, mirror: mirror, logs: &buf, worker: NewAlertWorker(engine, mirror, logger, time.Hour)}
}

func (f *fixture) add(t *testing.T, cents int64) (core.Expense, *amqp.Event) {
	t.Helper()
	e, err := f.store.AddExpense(context.Background(), core.Expense{
		Date:          core.NewDate(2025, 6, 10),
		Amount:        core.Money{Cents: cents},
		Category:      core.Food,
		PaymentMethod: core.Cash,
	})
	require.NoError(t, err)
	ev := amqp.NewExpenseEvent(amqp.ExpenseCreated, e)
	return e, &ev
}

func TestAlertWorker_TierTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	alerts, err := f.worker.Evaluate(ctx, 2025, 6)
	require.NoError(t, err)
	assert.Empty(t, alerts, "a budget first seen within its limit does not alert")

	_, ev := f.add(t, 8500)
	require.NoError(t, f.worker.HandleEvent(ctx, ev))
	assert.Contains(t, f.logs.String(), `"tier":"nearing limit"`)

	big, ev := f.add(t, 3000)
	require.NoError(t, f.worker.HandleEvent(ctx, ev))
	assert.Contains(t, f.logs.String(), `"tier":"exceeded"`)

	alerts, err = f.worker.Evaluate(ctx, 2025, 6)
	require.NoError(t, err)
	assert.Empty(t, alerts, "unchanged tier does not alert again")

	require.NoError(t, f.store.DeleteExpense(ctx, big.ID))
	require.NoError(t, f.store.DeleteExpense(ctx, big.ID-1))
	alerts, err = f.worker.Evaluate(ctx, 2025, 6)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, core.TierWithin, alerts[0].Status.Tier)
	assert.Equal(t, core.TierExceeded, alerts[0].From)
	assert.Contains(t, f.logs.String(), `"level":"INFO","msg":"Budget status changed"`)
}

func TestAlertWorker_UpdateAcrossMonthsRevisitsOldMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	e, ev := f.add(t, 12000)
	require.NoError(t, f.worker.HandleEvent(ctx, ev))
	assert.Contains(t, f.logs.String(), `"tier":"exceeded"`)

	moved := e
	moved.Date = core.NewDate(2025, 5, 10)
	require.NoError(t, f.store.UpdateExpense(ctx, moved))
	f.logs.Reset()

	upd := amqp.NewExpenseUpdatedEvent(e, moved)
	require.NoError(t, f.worker.HandleEvent(ctx, &upd))

	assert.Contains(t, f.logs.String(), `"tier":"within budget"`, "June recovers once the expense leaves it")

	alerts, err := f.worker.Evaluate(ctx, 2025, 6)
	require.NoError(t, err)
	assert.Empty(t, alerts, "June tier was already refreshed by the event")
}

func TestAlertWorker_MirrorsExpenses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	e, ev := f.add(t, 100)
	require.NoError(t, f.worker.HandleEvent(ctx, ev))

	del := amqp.NewExpenseEvent(amqp.ExpenseDeleted, e)
	require.NoError(t, f.worker.HandleEvent(ctx, &del))

	assert.Equal(t, []int64{e.ID}, f.mirror.upserted)
	assert.Equal(t, []int64{e.ID}, f.mirror.deleted)
}

func TestAlertWorker_MirrorFailureIsRetried(t *testing.T) {
	f := newFixture(t)
	f.mirror.err = errors.New("quota exceeded")

	_, ev := f.add(t, 100)
	err := f.worker.HandleEvent(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAlertWorker_IgnoredEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	income := amqp.NewIncomeEvent(core.Income{ID: 1, Date: core.NewDate(2025, 6, 1), Amount: core.Money{Cents: 100}, Source: "Salary"})
	assert.NoError(t, f.worker.HandleEvent(ctx, &income))

	unknown := &amqp.Event{ID: "x", Type: "expense.archived"}
	assert.NoError(t, f.worker.HandleEvent(ctx, unknown))

	bad := &amqp.Event{ID: "y", Type: amqp.ExpenseCreated, Date: "not-a-date"}
	assert.NoError(t, f.worker.HandleEvent(ctx, bad))

	assert.Empty(t, f.mirror.upserted)
}

func TestAlertWorker_BudgetEventEvaluatesCurrentMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, 9000)

	b := core.Budget{Category: core.Food, Monthly: core.Money{Cents: 5000}}
	require.NoError(t, f.store.UpsertBudget(ctx, b))
	ev := amqp.NewBudgetEvent(b)
	require.NoError(t, f.worker.HandleEvent(ctx, &ev))

	assert.Contains(t, f.logs.String(), `"tier":"exceeded"`)
}

func TestAlertWorker_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.worker.Start(ctx))
	assert.True(t, f.worker.IsRunning())
	assert.Error(t, f.worker.Start(ctx), "second start fails")

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, f.worker.Stop(stopCtx))
	assert.False(t, f.worker.IsRunning())
	assert.NoError(t, f.worker.Stop(stopCtx), "stopping twice is a no-op")
}

func TestAlertWorker_StartRejectsZeroInterval(t *testing.T) {
	w := NewAlertWorker(nil, nil, nil, 0)
	assert.Error(t, w.Start(context.Background()))
}
