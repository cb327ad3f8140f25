// Package postgres stores expenses, budgets and income in PostgreSQL.
//
// Amounts live in NUMERIC(10,2) columns. Conversion to and from integer
// cents happens in SQL so no floating point value ever reaches Go.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"budgetly/internal/core"
	"budgetly/internal/log"
	"budgetly/internal/storage"
)

type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// Connect opens a pool, checks it with a ping and migrates the schema.
func Connect(ctx context.Context, databaseURL string) (*Repository, error) {
	const op = "open postgres"

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, core.E(core.KindConnection, op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, core.E(core.KindConnection, op, fmt.Errorf("ping database: %w", err))
	}

	if err := RunMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, core.E(core.KindConnection, op, err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return core.E(core.KindConnection, "ping postgres", err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	err := pgx.BeginFunc(ctx, r.pool, fn)
	if err == nil {
		return nil
	}
	var cerr *core.Error
	if errors.As(err, &cerr) {
		return err
	}
	return core.E(core.KindQuery, op, err)
}

const expenseColumns = `id, date, (amount * 100)::bigint, category, payment_method`

func scanExpense(row pgx.CollectableRow) (core.Expense, error) {
	var (
		e      core.Expense
		date   time.Time
		cat    string
		method string
	)
	if err := row.Scan(&e.ID, &date, &e.Amount.Cents, &cat, &method); err != nil {
		return core.Expense{}, err
	}
	e.Date = core.DateOf(date)
	e.Category = core.Category(cat)
	e.PaymentMethod = core.PaymentMethod(method)
	return e, nil
}

func (r *Repository) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	const op = "add expense"
	if err := e.Validate(); err != nil {
		return core.Expense{}, core.Invalid(op, err)
	}

	err := r.inTx(ctx, op, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO expenses (date, amount, category, payment_method)
			VALUES ($1, $2::bigint / 100.0, $3, $4)
			RETURNING id`,
			e.Date.Time, e.Amount.Cents, string(e.Category), string(e.PaymentMethod),
		).Scan(&e.ID)
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved to PostgreSQL",
		log.FieldComponent, log.ComponentStorage,
		log.FieldExpenseID, e.ID,
		log.FieldAmountCents, e.Amount.Cents,
		log.FieldCategory, string(e.Category))
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	const op = "list expenses"
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out, err := pgx.CollectRows(rows, scanExpense)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	return out, nil
}

func (r *Repository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	const op = "get expense"
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	if err != nil {
		return core.Expense{}, core.E(core.KindQuery, op, err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, scanExpense)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, core.NotFound(op, "expense", id)
	}
	if err != nil {
		return core.Expense{}, core.E(core.KindQuery, op, err)
	}
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	const op = "update expense"
	if err := e.Validate(); err != nil {
		return core.Invalid(op, err)
	}
	return r.inTx(ctx, op, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE expenses
			SET date = $1, amount = $2::bigint / 100.0, category = $3, payment_method = $4
			WHERE id = $5`,
			e.Date.Time, e.Amount.Cents, string(e.Category), string(e.PaymentMethod), e.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return core.NotFound(op, "expense", e.ID)
		}
		return nil
	})
}

func (r *Repository) DeleteExpense(ctx context.Context, id int64) error {
	const op = "delete expense"
	return r.inTx(ctx, op, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return core.NotFound(op, "expense", id)
		}
		return nil
	})
}

func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) error {
	const op = "upsert budget"
	if err := b.Validate(); err != nil {
		return core.Invalid(op, err)
	}
	return r.inTx(ctx, op, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO budgets (category, monthly_budget, annual_budget)
			VALUES ($1, $2::bigint / 100.0, $3::bigint / 100.0)
			ON CONFLICT (category) DO UPDATE
			SET monthly_budget = EXCLUDED.monthly_budget,
			    annual_budget  = EXCLUDED.annual_budget`,
			string(b.Category), b.Monthly.Cents, b.Annual.Cents)
		return err
	})
}

func (r *Repository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	const op = "list budgets"
	rows, err := r.pool.Query(ctx, `
		SELECT category, (monthly_budget * 100)::bigint, (annual_budget * 100)::bigint
		FROM budgets
		ORDER BY category`)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Budget, error) {
		var (
			b   core.Budget
			cat string
		)
		err := row.Scan(&cat, &b.Monthly.Cents, &b.Annual.Cents)
		b.Category = core.Category(cat)
		return b, err
	})
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	return out, nil
}

func (r *Repository) MonthlySpendingByCategory(ctx context.Context, year, month int) (map[core.Category]core.Money, error) {
	const op = "monthly spending"
	if !storage.ValidMonth(year, month) {
		return nil, core.Invalid(op, fmt.Errorf("invalid period %04d-%02d", year, month))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT category, (SUM(amount) * 100)::bigint
		FROM expenses
		WHERE EXTRACT(MONTH FROM date) = $1::int AND EXTRACT(YEAR FROM date) = $2::int
		GROUP BY category`, month, year)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	defer rows.Close()

	out := make(map[core.Category]core.Money)
	for rows.Next() {
		var (
			cat   string
			cents int64
		)
		if err := rows.Scan(&cat, &cents); err != nil {
			return nil, core.E(core.KindQuery, op, err)
		}
		out[core.Category(cat)] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	return out, nil
}

func (r *Repository) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	const op = "add income"
	if err := in.Validate(); err != nil {
		return core.Income{}, core.Invalid(op, err)
	}
	err := r.inTx(ctx, op, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO income (date, amount, source)
			VALUES ($1, $2::bigint / 100.0, $3)
			RETURNING id`,
			in.Date.Time, in.Amount.Cents, in.Source,
		).Scan(&in.ID)
	})
	if err != nil {
		return core.Income{}, err
	}
	return in, nil
}

func (r *Repository) ListIncome(ctx context.Context) ([]core.Income, error) {
	const op = "list income"
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, (amount * 100)::bigint, source
		FROM income
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Income, error) {
		var (
			in   core.Income
			date time.Time
		)
		err := row.Scan(&in.ID, &date, &in.Amount.Cents, &in.Source)
		in.Date = core.DateOf(date)
		return in, err
	})
	if err != nil {
		return nil, core.E(core.KindQuery, op, err)
	}
	return out, nil
}

func (r *Repository) TotalIncome(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.pool.QueryRow(ctx, `SELECT (COALESCE(SUM(amount), 0) * 100)::bigint FROM income`).Scan(&cents)
	if err != nil {
		return core.Money{}, core.E(core.KindQuery, "total income", err)
	}
	return core.Money{Cents: cents}, nil
}
