package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

type insightsReport struct {
	Year               int            `json:"year"`
	Month              int            `json:"month"`
	TotalExpenses      string         `json:"total_expenses"`
	AvgDailyExpense    string         `json:"avg_daily_expense"`
	MaxExpense         string         `json:"max_expense"`
	MinExpense         string         `json:"min_expense"`
	TotalTransactions  int            `json:"total_transactions"`
	TotalMonthlyBudget string         `json:"total_monthly_budget"`
	TotalIncome        string         `json:"total_income"`
	Savings            string         `json:"savings"`
	MostSpentCategory  string         `json:"most_spent_category"`
	Alerts             []statusRecord `json:"alerts"`
}

// NewInsightsCommand prints the dashboard metrics and budget alerts.
func NewInsightsCommand(opts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show spending insights and budget alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, mon, err := parseMonth(month, opts.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), opts, func(app *App) error {
				d, err := app.Insights.DashboardFor(cmd.Context(), year, mon)
				if err != nil {
					return err
				}
				in := d.Insights
				rep := insightsReport{
					Year:               d.Year,
					Month:              d.Month,
					TotalExpenses:      in.TotalExpenses.String(),
					AvgDailyExpense:    in.AvgDailyExpense.String(),
					MaxExpense:         in.MaxExpense.String(),
					MinExpense:         in.MinExpense.String(),
					TotalTransactions:  in.TotalTransactions,
					TotalMonthlyBudget: in.TotalMonthlyBudget.String(),
					TotalIncome:        in.TotalIncome.String(),
					Savings:            in.Savings().String(),
					MostSpentCategory:  in.MostSpentCategory,
					Alerts:             []statusRecord{},
				}
				for _, st := range d.Alerts() {
					rep.Alerts = append(rep.Alerts, toStatusRecord(st))
				}

				return newFormatter(opts, cmd.OutOrStdout()).Emit(rep, func(w io.Writer) {
					row := func(label string, m core.Money) { fmt.Fprintf(w, "%s\t%s\n", label, core.FormatUSD(m)) }
					row("Total expenses", in.TotalExpenses)
					row("Average expense", in.AvgDailyExpense)
					row("Largest expense", in.MaxExpense)
					row("Smallest expense", in.MinExpense)
					fmt.Fprintf(w, "Transactions\t%d\n", in.TotalTransactions)
					row("Monthly budget", in.TotalMonthlyBudget)
					row("Total income", in.TotalIncome)
					row("Savings", in.Savings())
					fmt.Fprintf(w, "Most spent category\t%s\n", in.MostSpentCategory)
					if len(rep.Alerts) > 0 {
						fmt.Fprintf(w, "\nAlerts for %d-%02d\n", d.Year, d.Month)
						for _, a := range rep.Alerts {
							fmt.Fprintln(w, a.Message)
						}
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month for budget alerts as YYYY-MM (default current month)")
	return cmd
}
