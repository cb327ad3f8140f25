package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

type expenseFlags struct {
	date     string
	amount   string
	category string
	method   string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&f.category, "category", "", "one of Food, Transport, Rent, Entertainment, Utilities, Other")
	cmd.Flags().StringVar(&f.method, "method", "", "one of Credit Card, Debit Card, Cash, Online Transfer")
}

// apply overwrites the fields of e whose flags were set on cmd.
func (f *expenseFlags) apply(cmd *cobra.Command, e *core.Expense, opts *RootOptions) error {
	const op = "parse expense flags"
	changed := cmd.Flags().Changed

	if changed("date") || e.Date.IsZero() {
		d, err := parseDateFlag(f.date, opts.Now())
		if err != nil {
			return err
		}
		e.Date = d
	}
	if changed("amount") {
		m, err := core.ParseMoney(f.amount)
		if err != nil {
			return invalidFlag(op, err)
		}
		e.Amount = m
	}
	if changed("category") {
		c, err := core.ParseCategory(f.category)
		if err != nil {
			return invalidFlag(op, err)
		}
		e.Category = c
	}
	if changed("method") {
		p, err := core.ParsePaymentMethod(f.method)
		if err != nil {
			return invalidFlag(op, err)
		}
		e.PaymentMethod = p
	}
	return nil
}

// NewExpenseCommand creates the expense command group.
func NewExpenseCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Add, list, update and delete expenses",
	}
	cmd.AddCommand(newExpenseAddCommand(opts))
	cmd.AddCommand(newExpenseListCommand(opts))
	cmd.AddCommand(newExpenseUpdateCommand(opts))
	cmd.AddCommand(newExpenseDeleteCommand(opts))
	return cmd
}

func newExpenseAddCommand(opts *RootOptions) *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var e core.Expense
			if err := f.apply(cmd, &e, opts); err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				saved, err := app.Expenses.AddExpense(cmd.Context(), e)
				if err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(toExpenseRecord(saved), func(w io.Writer) {
					fmt.Fprintf(w, "Added expense %d: %s %s on %s (%s)\n",
						saved.ID, core.FormatUSD(saved.Amount), saved.Category, saved.Date, saved.PaymentMethod)
				})
			})
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}

func newExpenseListCommand(opts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var year, mon int
			if month != "" {
				var err error
				if year, mon, err = parseMonth(month, opts.Now()); err != nil {
					return err
				}
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				expenses, err := app.Expenses.ListExpenses(cmd.Context())
				if err != nil {
					return err
				}
				records := make([]expenseRecord, 0, len(expenses))
				var total core.Money
				for _, e := range expenses {
					if month != "" && (e.Date.Year() != year || e.Date.Month() != mon) {
						continue
					}
					records = append(records, toExpenseRecord(e))
					total = total.Add(e.Amount)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(records, func(w io.Writer) {
					fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tPAYMENT METHOD")
					for _, r := range records {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Amount, r.Category, r.PaymentMethod)
					}
					fmt.Fprintf(w, "\tTOTAL\t%s\t\t\n", total)
				})
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only expenses of this month, as YYYY-MM")
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("parse id", fmt.Errorf("invalid expense id %q", arg))
	}
	return id, nil
}

func newExpenseUpdateCommand(opts *RootOptions) *cobra.Command {
	var f expenseFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an expense; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				e, err := app.Expenses.GetExpense(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := f.apply(cmd, &e, opts); err != nil {
					return err
				}
				if err := app.Expenses.UpdateExpense(cmd.Context(), e); err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(toExpenseRecord(e), func(w io.Writer) {
					fmt.Fprintf(w, "Updated expense %d: %s %s on %s (%s)\n",
						e.ID, core.FormatUSD(e.Amount), e.Category, e.Date, e.PaymentMethod)
				})
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newExpenseDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				if err := app.Expenses.DeleteExpense(cmd.Context(), id); err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(map[string]int64{"deleted": id}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted expense %d\n", id)
				})
			})
		},
	}
}
