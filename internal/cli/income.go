package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

// NewIncomeCommand creates the income command group.
func NewIncomeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record and list income",
	}
	cmd.AddCommand(newIncomeAddCommand(opts))
	cmd.AddCommand(newIncomeListCommand(opts))
	return cmd
}

func newIncomeAddCommand(opts *RootOptions) *cobra.Command {
	var date, amount, source string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag(date, opts.Now())
			if err != nil {
				return err
			}
			m, err := core.ParseMoney(amount)
			if err != nil {
				return invalidFlag("parse income", err)
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				saved, err := app.Income.AddIncome(cmd.Context(), core.Income{Date: d, Amount: m, Source: source})
				if err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(toIncomeRecord(saved), func(w io.Writer) {
					fmt.Fprintf(w, "Added income %d: %s from %s on %s\n",
						saved.ID, core.FormatUSD(saved.Amount), saved.Source, saved.Date)
				})
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 2500.00")
	cmd.Flags().StringVar(&source, "source", "", "where the money came from")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newIncomeListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List income, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *App) error {
				income, err := app.Income.ListIncome(cmd.Context())
				if err != nil {
					return err
				}
				records := make([]incomeRecord, 0, len(income))
				for _, in := range income {
					records = append(records, toIncomeRecord(in))
				}
				return newFormatter(opts, cmd.OutOrStdout()).Emit(records, func(w io.Writer) {
					fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tSOURCE")
					for _, r := range records {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Date, r.Amount, r.Source)
					}
				})
			})
		},
	}
}
