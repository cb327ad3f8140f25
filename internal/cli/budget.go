package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"budgetly/internal/budgetfile"
	"budgetly/internal/core"
)

// NewBudgetCommand creates the budget command group.
func NewBudgetCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set, list, evaluate, import and export budgets",
	}
	cmd.AddCommand(newBudgetSetCommand(opts))
	cmd.AddCommand(newBudgetListCommand(opts))
	cmd.AddCommand(newBudgetStatusCommand(opts))
	cmd.AddCommand(newBudgetImportCommand(opts))
	cmd.AddCommand(newBudgetExportCommand(opts))
	return cmd
}

func newBudgetSetCommand(opts *RootOptions) *cobra.Command {
	var annual string
	cmd := &cobra.Command{
		Use:   "set <category> <monthly>",
		Short: "Create or replace the budget of a category",
		Long:  "Create or replace the budget of a category. The annual budget defaults to twelve times the monthly one.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "parse budget"
			cat, err := core.ParseCategory(args[0])
			if err != nil {
				return invalidFlag(op, err)
			}
			monthly, err := core.ParseMoney(args[1])
			if err != nil {
				return invalidFlag(op, fmt.Errorf("monthly budget: %w", err))
			}
			b := core.Budget{Category: cat, Monthly: monthly, Annual: core.Money{Cents: monthly.Cents * 12}}
			if annual != "" {
				if b.Annual, err = core.ParseMoney(annual); err != nil {
					return invalidFlag(op, fmt.Errorf("annual budget: %w", err))
				}
			}
			if err := b.Validate(); err != nil {
				return invalidFlag(op, err)
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				if err := app.Budgets.UpsertBudget(cmd.Context(), b); err != nil {
					return err
				}
				rec := budgetRecord{Category: string(b.Category), Monthly: b.Monthly.String(), Annual: b.Annual.String()}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(rec, func(w io.Writer) {
					fmt.Fprintf(w, "Set %s budget: %s monthly, %s annual\n",
						b.Category, core.FormatUSD(b.Monthly), core.FormatUSD(b.Annual))
				})
			})
		},
	}
	cmd.Flags().StringVar(&annual, "annual", "", "annual budget (default 12 x monthly)")
	return cmd
}

func newBudgetListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				budgets, err := app.Budgets.ListBudgets(cmd.Context())
				if err != nil {
					return err
				}
				records := make([]budgetRecord, 0, len(budgets))
				for _, b := range budgets {
					records = append(records, budgetRecord{Category: string(b.Category), Monthly: b.Monthly.String(), Annual: b.Annual.String()})
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(records, func(w io.Writer) {
					fmt.Fprintln(w, "CATEGORY\tMONTHLY\tANNUAL")
					for _, r := range records {
						fmt.Fprintf(w, "%s\t%s\t%s\n", r.Category, r.Monthly, r.Annual)
					}
				})
			})
		},
	}
}

func newBudgetStatusCommand(opts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Evaluate every budget against a month of spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, mon, err := parseMonth(month, opts.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				statuses, err := app.Insights.BudgetStatusesFor(cmd.Context(), year, mon)
				if err != nil {
					return err
				}
				records := make([]statusRecord, 0, len(statuses))
				for _, st := range statuses {
					records = append(records, toStatusRecord(st))
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(records, func(w io.Writer) {
					fmt.Fprintf(w, "Budget status for %d-%02d\n", year, mon)
					fmt.Fprintln(w, "CATEGORY\tMONTHLY\tSPENT\tREMAINING\tSTATUS")
					for _, r := range records {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Category, r.Monthly, r.Spent, r.Remaining, r.Tier)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}

func newBudgetImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Upsert every budget of a YAML budget file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgets, err := budgetfile.Load(args[0])
			if err != nil {
				return core.Invalid("import budgets", err)
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				n, err := app.Budgets.ImportBudgets(cmd.Context(), budgets)
				if err != nil {
					return fmt.Errorf("imported %d of %d budgets: %w", n, len(budgets), err)
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(map[string]int{"imported": n}, func(w io.Writer) {
					fmt.Fprintf(w, "Imported %d budgets from %s\n", n, args[0])
				})
			})
		},
	}
}

func newBudgetExportCommand(opts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every budget as a YAML budget file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				budgets, err := app.Budgets.ListBudgets(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return budgetfile.Encode(cmd.OutOrStdout(), budgets)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := budgetfile.Encode(f, budgets); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}
