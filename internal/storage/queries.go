package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQLite statements. Rows mirror the table layout, amounts
// are integer cents and dates are YYYY-MM-DD text.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Expense struct {
	ID            int64
	Date          string
	AmountCents   int64
	Category      string
	PaymentMethod string
}

type Budget struct {
	ID                 int64
	Category           string
	MonthlyBudgetCents int64
	AnnualBudgetCents  int64
}

type Income struct {
	ID          int64
	Date        string
	AmountCents int64
	Source      string
}

type CategorySum struct {
	Category   string
	TotalCents int64
}

const createExpense = `
INSERT INTO expenses (date, amount_cents, category, payment_method)
VALUES (?, ?, ?, ?)
RETURNING id, date, amount_cents, category, payment_method`

type CreateExpenseParams struct {
	Date          string
	AmountCents   int64
	Category      string
	PaymentMethod string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense, arg.Date, arg.AmountCents, arg.Category, arg.PaymentMethod)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.AmountCents, &i.Category, &i.PaymentMethod)
	return i, err
}

const getExpense = `
SELECT id, date, amount_cents, category, payment_method
FROM expenses
WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.AmountCents, &i.Category, &i.PaymentMethod)
	return i, err
}

const listExpenses = `
SELECT id, date, amount_cents, category, payment_method
FROM expenses
ORDER BY date DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Date, &i.AmountCents, &i.Category, &i.PaymentMethod); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateExpense = `
UPDATE expenses
SET date = ?, amount_cents = ?, category = ?, payment_method = ?
WHERE id = ?`

type UpdateExpenseParams struct {
	Date          string
	AmountCents   int64
	Category      string
	PaymentMethod string
	ID            int64
}

// UpdateExpense returns the number of rows touched.
func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense, arg.Date, arg.AmountCents, arg.Category, arg.PaymentMethod, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

// DeleteExpense returns the number of rows removed.
func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertBudget = `
INSERT INTO budgets (category, monthly_budget_cents, annual_budget_cents)
VALUES (?, ?, ?)
ON CONFLICT (category) DO UPDATE
SET monthly_budget_cents = excluded.monthly_budget_cents,
    annual_budget_cents  = excluded.annual_budget_cents`

type UpsertBudgetParams struct {
	Category           string
	MonthlyBudgetCents int64
	AnnualBudgetCents  int64
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, arg.Category, arg.MonthlyBudgetCents, arg.AnnualBudgetCents)
	return err
}

const listBudgets = `
SELECT id, category, monthly_budget_cents, annual_budget_cents
FROM budgets
ORDER BY category`

func (q *Queries) ListBudgets(ctx context.Context) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		var i Budget
		if err := rows.Scan(&i.ID, &i.Category, &i.MonthlyBudgetCents, &i.AnnualBudgetCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Dates are ISO text, so a half-open string range selects one month and
// can use idx_expenses_date.
const monthlySpendingByCategory = `
SELECT category, CAST(SUM(amount_cents) AS INTEGER) AS total_cents
FROM expenses
WHERE date >= ? AND date < ?
GROUP BY category`

type MonthlySpendingParams struct {
	From  string
	Until string
}

func (q *Queries) MonthlySpendingByCategory(ctx context.Context, arg MonthlySpendingParams) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, monthlySpendingByCategory, arg.From, arg.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var i CategorySum
		if err := rows.Scan(&i.Category, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createIncome = `
INSERT INTO income (date, amount_cents, source)
VALUES (?, ?, ?)
RETURNING id, date, amount_cents, source`

type CreateIncomeParams struct {
	Date        string
	AmountCents int64
	Source      string
}

func (q *Queries) CreateIncome(ctx context.Context, arg CreateIncomeParams) (Income, error) {
	row := q.db.QueryRowContext(ctx, createIncome, arg.Date, arg.AmountCents, arg.Source)
	var i Income
	err := row.Scan(&i.ID, &i.Date, &i.AmountCents, &i.Source)
	return i, err
}

const listIncome = `
SELECT id, date, amount_cents, source
FROM income
ORDER BY date DESC, id DESC`

func (q *Queries) ListIncome(ctx context.Context) ([]Income, error) {
	rows, err := q.db.QueryContext(ctx, listIncome)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Income
	for rows.Next() {
		var i Income
		if err := rows.Scan(&i.ID, &i.Date, &i.AmountCents, &i.Source); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const totalIncome = `SELECT CAST(COALESCE(SUM(amount_cents), 0) AS INTEGER) FROM income`

func (q *Queries) TotalIncome(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, totalIncome)
	var total int64
	err := row.Scan(&total)
	return total, err
}
