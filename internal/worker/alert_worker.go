package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/sheets"
)

// Evaluator computes budget statuses for a month. Satisfied by *insights.Engine.
type Evaluator interface {
	CurrentMonth() (int, int)
	BudgetStatusesFor(ctx context.Context, year, month int) ([]core.BudgetStatus, error)
}

// Alert is a budget whose tier changed since it was last evaluated.
type Alert struct {
	Year   int
	Month  int
	Status core.BudgetStatus
	From   core.BudgetTier
}

// AlertWorker consumes mutation events, raises budget alerts when a tier
// changes and mirrors expenses to a spreadsheet when one is configured.
type AlertWorker struct {
	engine   Evaluator
	mirror   sheets.ExpenseMirror
	alerts   *log.StructuredLogger
	interval time.Duration

	tiersMu sync.Mutex
	tiers   map[string]core.BudgetTier

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewAlertWorker creates a worker. mirror may be nil.
func NewAlertWorker(engine Evaluator, mirror sheets.ExpenseMirror, logger *log.Logger, interval time.Duration) *AlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AlertWorker{
		engine:   engine,
		mirror:   mirror,
		alerts:   log.NewStructuredLogger(logger),
		interval: interval,
		tiers:    make(map[string]core.BudgetTier),
	}
}

// HandleEvent processes one event from the queue. A returned error makes
// the consumer requeue the message.
func (w *AlertWorker) HandleEvent(ctx context.Context, ev *amqp.Event) error {
	slog.DebugContext(ctx, "Processing event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldEventID, ev.ID,
		log.FieldEventType, string(ev.Type))

	switch ev.Type {
	case amqp.ExpenseCreated, amqp.ExpenseUpdated, amqp.ExpenseDeleted:
		e, err := ev.Expense()
		if err != nil {
			// Malformed payloads cannot succeed on retry.
			slog.WarnContext(ctx, "Dropping expense event with bad date",
				log.FieldComponent, log.ComponentWorker,
				log.FieldEventID, ev.ID,
				log.FieldError, err)
			return nil
		}
		if _, err := w.Evaluate(ctx, e.Date.Year(), e.Date.Month()); err != nil {
			return err
		}
		// An update that moved the expense changes the month it left too.
		if y, m, ok := ev.PrevMonth(); ok && (y != e.Date.Year() || m != e.Date.Month()) {
			if _, err := w.Evaluate(ctx, y, m); err != nil {
				return err
			}
		}
		return w.mirrorExpense(ctx, ev.Type, e)

	case amqp.BudgetUpserted:
		year, month := w.engine.CurrentMonth()
		_, err := w.Evaluate(ctx, year, month)
		return err

	case amqp.IncomeAdded:
		return nil

	default:
		slog.WarnContext(ctx, "Ignoring unknown event type",
			log.FieldComponent, log.ComponentWorker,
			log.FieldEventID, ev.ID,
			log.FieldEventType, string(ev.Type))
		return nil
	}
}

func (w *AlertWorker) mirrorExpense(ctx context.Context, t amqp.EventType, e core.Expense) error {
	if w.mirror == nil {
		return nil
	}
	var err error
	if t == amqp.ExpenseDeleted {
		err = w.mirror.Delete(ctx, e.ID)
	} else {
		err = w.mirror.Upsert(ctx, e)
	}
	if err != nil {
		return fmt.Errorf("mirror expense %d: %w", e.ID, err)
	}
	slog.InfoContext(ctx, "Expense mirrored to sheet",
		log.FieldComponent, log.ComponentSheets,
		log.FieldExpenseID, e.ID,
		log.FieldEventType, string(t))
	return nil
}

// Evaluate recomputes every budget for year/month and returns the ones
// whose tier changed. A budget seen for the first time alerts only when it
// is not within its limit.
func (w *AlertWorker) Evaluate(ctx context.Context, year, month int) ([]Alert, error) {
	statuses, err := w.engine.BudgetStatusesFor(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("evaluate budgets %04d-%02d: %w", year, month, err)
	}

	w.tiersMu.Lock()
	var changed []Alert
	for _, st := range statuses {
		key := fmt.Sprintf("%04d-%02d/%s", year, month, st.Category)
		prev, seen := w.tiers[key]
		w.tiers[key] = st.Tier
		if seen && prev == st.Tier {
			continue
		}
		if !seen && st.Tier == core.TierWithin {
			continue
		}
		changed = append(changed, Alert{Year: year, Month: month, Status: st, From: prev})
	}
	w.tiersMu.Unlock()

	for _, a := range changed {
		w.alerts.LogBudgetAlert(ctx, string(a.Status.Category), string(a.Status.Tier),
			a.Status.Remaining.Cents, a.Status.Tier != core.TierWithin)
	}
	return changed, nil
}

// Start runs a periodic sweep of the current month. Returns an error if
// already running.
func (w *AlertWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("alert worker: interval must be positive")
	}
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("alert worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	slog.InfoContext(ctx, "Alert worker started",
		log.FieldComponent, log.ComponentWorker,
		"interval", w.interval)
	return nil
}

// Stop signals the sweep loop and waits for it to exit or ctx to expire.
func (w *AlertWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		slog.InfoContext(ctx, "Alert worker stopped gracefully", log.FieldComponent, log.ComponentWorker)
	case <-ctx.Done():
		slog.WarnContext(ctx, "Alert worker stop timed out", log.FieldComponent, log.ComponentWorker)
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return nil
}

func (w *AlertWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *AlertWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *AlertWorker) sweep(ctx context.Context) {
	year, month := w.engine.CurrentMonth()
	if _, err := w.Evaluate(ctx, year, month); err != nil {
		slog.ErrorContext(ctx, "Budget sweep failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldError, err)
	}
}
