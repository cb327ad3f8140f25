// Package insights derives dashboard read models from the store.
//
// The Engine keeps no state of its own beyond a cache of computed results.
// Services call Invalidate after every successful mutation.
package insights

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"budgetly/internal/cache"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

// Reader is the part of the store the engine reads from.
type Reader interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	TotalIncome(ctx context.Context) (core.Money, error)
	MonthlySpendingByCategory(ctx context.Context, year, month int) (map[core.Category]core.Money, error)
}

// Dashboard is everything the dashboard view shows, evaluated for one
// calendar month.
type Dashboard struct {
	Year      int
	Month     int
	Insights  core.Insights
	Statuses  []core.BudgetStatus
	Breakdown []core.CategoryAmount
	Trend     []core.MonthTotal
}

// Alerts returns the statuses that are not within budget.
func (d Dashboard) Alerts() []core.BudgetStatus {
	var out []core.BudgetStatus
	for _, s := range d.Statuses {
		if s.Tier != core.TierWithin {
			out = append(out, s)
		}
	}
	return out
}

// DefaultComputeTimeout bounds one shared dashboard computation.
const DefaultComputeTimeout = 15 * time.Second

type Engine struct {
	store   Reader
	cache   cache.Cache[Dashboard]
	now     func() time.Time
	timeout time.Duration
	group   singleflight.Group
	gen     atomic.Uint64
	logger  *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now, which decides the current month.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCache stores computed dashboards in c.
func WithCache(c cache.Cache[Dashboard]) Option {
	return func(e *Engine) { e.cache = c }
}

// WithComputeTimeout bounds each shared computation. It is independent of
// the callers' deadlines.
func WithComputeTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(store Reader, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		now:     time.Now,
		timeout: DefaultComputeTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(log.FieldComponent, log.ComponentInsights)
	return e
}

// CurrentMonth is the year and month budgets are evaluated against.
func (e *Engine) CurrentMonth() (int, int) {
	t := e.now()
	return t.Year(), int(t.Month())
}

// ComputeInsights returns the aggregate metrics over every expense.
func (e *Engine) ComputeInsights(ctx context.Context) (core.Insights, error) {
	d, err := e.Dashboard(ctx)
	if err != nil {
		return core.Insights{}, err
	}
	return d.Insights, nil
}

// BudgetStatuses evaluates every budget against the current month.
func (e *Engine) BudgetStatuses(ctx context.Context) ([]core.BudgetStatus, error) {
	d, err := e.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return d.Statuses, nil
}

// BudgetStatusesFor evaluates every budget against year/month.
func (e *Engine) BudgetStatusesFor(ctx context.Context, year, month int) ([]core.BudgetStatus, error) {
	d, err := e.DashboardFor(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return d.Statuses, nil
}

// Dashboard returns the read model for the current month.
func (e *Engine) Dashboard(ctx context.Context) (Dashboard, error) {
	year, month := e.CurrentMonth()
	return e.DashboardFor(ctx, year, month)
}

// DashboardFor returns the read model with budgets evaluated for
// year/month. Concurrent misses for the same month share one computation.
func (e *Engine) DashboardFor(ctx context.Context, year, month int) (Dashboard, error) {
	gen := e.gen.Load()
	key := fmt.Sprintf("dashboard:%04d-%02d", year, month)

	if e.cache != nil {
		if d, ok := e.cache.Get(key); ok {
			e.logger.DebugContext(ctx, "Dashboard cache hit", log.FieldYear, year, log.FieldMonth, month)
			return d, nil
		}
	}

	// The computation is shared, so it must not die with the caller that
	// happened to start it. Each caller still stops waiting on its own ctx.
	ch := e.group.DoChan(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		d, err := e.compute(cctx, year, month)
		if err != nil {
			return Dashboard{}, err
		}
		// A mutation since the lookup makes this result stale for the cache.
		if e.cache != nil && e.gen.Load() == gen {
			e.cache.Set(key, d)
		}
		return d, nil
	})
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	}
}

func (e *Engine) compute(ctx context.Context, year, month int) (Dashboard, error) {
	var (
		expenses []core.Expense
		budgets  []core.Budget
		income   core.Money
		spending map[core.Category]core.Money
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = e.store.ListExpenses(gctx)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = e.store.ListBudgets(gctx)
		return err
	})
	g.Go(func() (err error) {
		income, err = e.store.TotalIncome(gctx)
		return err
	})
	g.Go(func() (err error) {
		spending, err = e.store.MonthlySpendingByCategory(gctx, year, month)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "Failed to compute dashboard", log.FieldError, err, log.FieldYear, year, log.FieldMonth, month)
		return Dashboard{}, err
	}

	return Dashboard{
		Year:      year,
		Month:     month,
		Insights:  core.ComputeInsights(expenses, budgets, income),
		Statuses:  core.EvaluateBudgets(budgets, spending),
		Breakdown: core.CategoryBreakdown(expenses),
		Trend:     core.MonthlyTrend(expenses),
	}, nil
}

// Invalidate drops every cached read model.
func (e *Engine) Invalidate() {
	e.gen.Add(1)
	if e.cache != nil {
		e.cache.Clear()
	}
}
