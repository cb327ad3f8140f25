package http

import (
	"budgetly/internal/core"
	"budgetly/internal/insights"
)

// Wire shapes of the JSON API. Amounts travel as two-decimal strings so no
// client has to parse floats.

type expenseJSON struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PaymentMethod string `json:"payment_method"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:            e.ID,
		Date:          e.Date.String(),
		Amount:        e.Amount.String(),
		Category:      string(e.Category),
		PaymentMethod: string(e.PaymentMethod),
	}
}

type budgetJSON struct {
	Category      string `json:"category"`
	MonthlyBudget string `json:"monthly_budget"`
	AnnualBudget  string `json:"annual_budget"`
}

type budgetStatusJSON struct {
	Category      string `json:"category"`
	MonthlyBudget string `json:"monthly_budget"`
	Spent         string `json:"spent"`
	Remaining     string `json:"remaining"`
	Tier          string `json:"tier"`
	Message       string `json:"message"`
}

func toBudgetStatusJSON(st core.BudgetStatus) budgetStatusJSON {
	return budgetStatusJSON{
		Category:      string(st.Category),
		MonthlyBudget: st.Monthly.String(),
		Spent:         st.Spent.String(),
		Remaining:     st.Remaining.String(),
		Tier:          string(st.Tier),
		Message:       st.Message(),
	}
}

type incomeJSON struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Source string `json:"source"`
}

func toIncomeJSON(in core.Income) incomeJSON {
	return incomeJSON{ID: in.ID, Date: in.Date.String(), Amount: in.Amount.String(), Source: in.Source}
}

type insightsJSON struct {
	TotalExpenses      string `json:"total_expenses"`
	AvgDailyExpense    string `json:"avg_daily_expense"`
	MaxExpense         string `json:"max_expense"`
	MinExpense         string `json:"min_expense"`
	TotalTransactions  int    `json:"total_transactions"`
	TotalMonthlyBudget string `json:"total_monthly_budget"`
	TotalIncome        string `json:"total_income"`
	Savings            string `json:"savings"`
	MostSpentCategory  string `json:"most_spent_category"`
}

func toInsightsJSON(in core.Insights) insightsJSON {
	return insightsJSON{
		TotalExpenses:      in.TotalExpenses.String(),
		AvgDailyExpense:    in.AvgDailyExpense.String(),
		MaxExpense:         in.MaxExpense.String(),
		MinExpense:         in.MinExpense.String(),
		TotalTransactions:  in.TotalTransactions,
		TotalMonthlyBudget: in.TotalMonthlyBudget.String(),
		TotalIncome:        in.TotalIncome.String(),
		Savings:            in.Savings().String(),
		MostSpentCategory:  in.MostSpentCategory,
	}
}

type amountJSON struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type dashboardJSON struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	Insights  insightsJSON       `json:"insights"`
	Statuses  []budgetStatusJSON `json:"budget_statuses"`
	Breakdown []amountJSON       `json:"category_breakdown"`
	Trend     []amountJSON       `json:"monthly_trend"`
}

func toDashboardJSON(d insights.Dashboard) dashboardJSON {
	out := dashboardJSON{
		Year:      d.Year,
		Month:     d.Month,
		Insights:  toInsightsJSON(d.Insights),
		Statuses:  make([]budgetStatusJSON, 0, len(d.Statuses)),
		Breakdown: make([]amountJSON, 0, len(d.Breakdown)),
		Trend:     make([]amountJSON, 0, len(d.Trend)),
	}
	for _, st := range d.Statuses {
		out.Statuses = append(out.Statuses, toBudgetStatusJSON(st))
	}
	for _, c := range d.Breakdown {
		out.Breakdown = append(out.Breakdown, amountJSON{Label: string(c.Category), Amount: c.Amount.String()})
	}
	for _, m := range d.Trend {
		out.Trend = append(out.Trend, amountJSON{Label: m.Label(), Amount: m.Amount.String()})
	}
	return out
}
