package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"budgetly/internal/core"
)

// Exit codes for budgetctl.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // store or broker failure
	ExitCommandError = 2 // bad input or unknown record
)

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case core.IsValidation(err), core.IsNotFound(err):
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Emit writes data as indented JSON, or calls text with a tab-aligned
// writer.
func (f *OutputFormatter) Emit(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

type expenseRecord struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
}

func toExpenseRecord(e core.Expense) expenseRecord {
	return expenseRecord{
		ID:            e.ID,
		Date:          e.Date.String(),
		Amount:        e.Amount.String(),
		Category:      string(e.Category),
		PaymentMethod: string(e.PaymentMethod),
	}
}

type budgetRecord struct {
	Category string `json:"category"`
	Monthly  string `json:"monthly_budget"`
	Annual   string `json:"annual_budget"`
}

type statusRecord struct {
	Category  string `json:"category"`
	Monthly   string `json:"monthly_budget"`
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
	Tier      string `json:"tier"`
	Message   string `json:"message"`
}

func toStatusRecord(st core.BudgetStatus) statusRecord {
	return statusRecord{
		Category:  string(st.Category),
		Monthly:   st.Monthly.String(),
		Spent:     st.Spent.String(),
		Remaining: st.Remaining.String(),
		Tier:      string(st.Tier),
		Message:   st.Message(),
	}
}

type incomeRecord struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Source string `json:"source"`
}

func toIncomeRecord(in core.Income) incomeRecord {
	return incomeRecord{ID: in.ID, Date: in.Date.String(), Amount: in.Amount.String(), Source: in.Source}
}

// parseMonth reads YYYY-MM. An empty value means the month of now.
func parseMonth(s string, now time.Time) (int, int, error) {
	if s == "" {
		return now.Year(), int(now.Month()), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, core.Invalid("parse month", fmt.Errorf("month %q must be YYYY-MM", s))
	}
	return t.Year(), int(t.Month()), nil
}

// parseDateFlag reads YYYY-MM-DD. An empty value means the date of now.
func parseDateFlag(s string, now time.Time) (core.Date, error) {
	if s == "" {
		return core.DateOf(now), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, core.Invalid("parse date", err)
	}
	return d, nil
}

func invalidFlag(op string, err error) error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	return core.Invalid(op, err)
}
