package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budgetly/internal/core"
	"budgetly/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it. Failures are core.KindConnection errors.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	const op = "open sqlite"

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, core.E(core.KindConnection, op, fmt.Errorf("create db directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.E(core.KindConnection, op, fmt.Errorf("open sqlite database: %w", err))
	}
	// One writer at a time; transactions take the only connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.E(core.KindConnection, op, fmt.Errorf("ping database: %w", err))
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, core.E(core.KindConnection, op, fmt.Errorf("set busy timeout: %w", err))
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, core.E(core.KindConnection, op, fmt.Errorf("run migrations: %w", err))
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return core.E(core.KindConnection, "ping sqlite", err)
	}
	return nil
}

// inTx runs fn in a transaction, rolling back on any error.
func (r *SQLiteRepository) inTx(ctx context.Context, op string, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.E(core.KindQuery, op, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		var cerr *core.Error
		if errors.As(err, &cerr) {
			return err
		}
		return core.E(core.KindQuery, op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.E(core.KindQuery, op, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	const op = "add expense"
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.Invalid(op, err)
	}

	var row Expense
	err := r.inTx(ctx, op, func(q *Queries) error {
		var err error
		row, err = q.CreateExpense(ctx, CreateExpenseParams{
			Date:          e.Date.String(),
			AmountCents:   e.Amount.Cents,
			Category:      string(e.Category),
			PaymentMethod: string(e.PaymentMethod),
		})
		return err
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, row.ID,
		log.FieldAmountCents, row.AmountCents,
		log.FieldCategory, row.Category)

	return expenseFromRow(op, row)
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	const op = "list expenses"
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := expenseFromRow(op, row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	const op = "get expense"
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NotFound(op, "expense", id)
	}
	if err != nil {
		return core.Expense{}, core.E(core.KindQuery, op, err)
	}
	return expenseFromRow(op, row)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	const op = "update expense"
	if err := e.Validate(); err != nil {
		return core.Invalid(op, err)
	}

	err := r.inTx(ctx, op, func(q *Queries) error {
		n, err := q.UpdateExpense(ctx, UpdateExpenseParams{
			Date:          e.Date.String(),
			AmountCents:   e.Amount.Cents,
			Category:      string(e.Category),
			PaymentMethod: string(e.PaymentMethod),
			ID:            e.ID,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return core.NotFound(op, "expense", e.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense updated in SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, e.ID)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	const op = "delete expense"
	err := r.inTx(ctx, op, func(q *Queries) error {
		n, err := q.DeleteExpense(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return core.NotFound(op, "expense", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted from SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, id)
	return nil
}

func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	const op = "upsert budget"
	if err := b.Validate(); err != nil {
		return core.Invalid(op, err)
	}
	return r.inTx(ctx, op, func(q *Queries) error {
		return q.UpsertBudget(ctx, UpsertBudgetParams{
			Category:           string(b.Category),
			MonthlyBudgetCents: b.Monthly.Cents,
			AnnualBudgetCents:  b.Annual.Cents,
		})
	})
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, core.E(core.KindQuery, "list budgets", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Budget{
			Category: core.Category(row.Category),
			Monthly:  core.Money{Cents: row.MonthlyBudgetCents},
			Annual:   core.Money{Cents: row.AnnualBudgetCents},
		})
	}
	return out, nil
}

func (r *SQLiteRepository) MonthlySpendingByCategory(ctx context.Context, year, month int) (map[core.Category]core.Money, error) {
	const op = "monthly spending"
	if !ValidMonth(year, month) {
		return nil, core.Invalid(op, fmt.Errorf("invalid period %04d-%02d", year, month))
	}
	from := core.NewDate(year, month, 1)
	until := core.DateOf(from.AddDate(0, 1, 0))

	rows, err := r.queries.MonthlySpendingByCategory(ctx, MonthlySpendingParams{
		From:  from.String(),
		Until: until.String(),
	})
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out := make(map[core.Category]core.Money, len(rows))
	for _, row := range rows {
		out[core.Category(row.Category)] = core.Money{Cents: row.TotalCents}
	}
	return out, nil
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	const op = "add income"
	if err := in.Validate(); err != nil {
		return core.Income{}, core.Invalid(op, err)
	}

	var row Income
	err := r.inTx(ctx, op, func(q *Queries) error {
		var err error
		row, err = q.CreateIncome(ctx, CreateIncomeParams{
			Date:        in.Date.String(),
			AmountCents: in.Amount.Cents,
			Source:      in.Source,
		})
		return err
	})
	if err != nil {
		return core.Income{}, err
	}
	return incomeFromRow(op, row)
}

func (r *SQLiteRepository) ListIncome(ctx context.Context) ([]core.Income, error) {
	const op = "list income"
	rows, err := r.queries.ListIncome(ctx)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out := make([]core.Income, 0, len(rows))
	for _, row := range rows {
		in, err := incomeFromRow(op, row)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (r *SQLiteRepository) TotalIncome(ctx context.Context) (core.Money, error) {
	total, err := r.queries.TotalIncome(ctx)
	if err != nil {
		return core.Money{}, core.E(core.KindQuery, "total income", err)
	}
	return core.Money{Cents: total}, nil
}

func expenseFromRow(op string, row Expense) (core.Expense, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Expense{}, core.E(core.KindQuery, op, fmt.Errorf("expense %d has date %q: %w", row.ID, row.Date, err))
	}
	return core.Expense{
		ID:            row.ID,
		Date:          d,
		Amount:        core.Money{Cents: row.AmountCents},
		Category:      core.Category(row.Category),
		PaymentMethod: core.PaymentMethod(row.PaymentMethod),
	}, nil
}

func incomeFromRow(op string, row Income) (core.Income, error) {
	d, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Income{}, core.E(core.KindQuery, op, fmt.Errorf("income %d has date %q: %w", row.ID, row.Date, err))
	}
	return core.Income{
		ID:     row.ID,
		Date:   d,
		Amount: core.Money{Cents: row.AmountCents},
		Source: row.Source,
	}, nil
}
