package core

import (
	"sort"
	"time"
)

// NoCategory is shown as the most spent category when there are no expenses.
const NoCategory = "N/A"

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthTotal is the spending of one calendar month.
type MonthTotal struct {
	Year   int
	Month  int // 1-12
	Amount Money
}

// Label formats the month as "Jan 2025".
func (m MonthTotal) Label() string {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// Insights are the dashboard metrics computed over the full expense history.
type Insights struct {
	TotalExpenses      Money
	AvgDailyExpense    Money // mean of expense amounts, not bucketed by day
	MaxExpense         Money
	MinExpense         Money
	TotalTransactions  int
	TotalMonthlyBudget Money
	TotalIncome        Money
	MostSpentCategory  string
}

// Savings is income minus expenses. It can be negative.
func (in Insights) Savings() Money {
	return in.TotalIncome.Sub(in.TotalExpenses)
}

// ComputeInsights aggregates expenses and budgets. Numeric fields are zero
// and MostSpentCategory is NoCategory when expenses is empty.
func ComputeInsights(expenses []Expense, budgets []Budget, totalIncome Money) Insights {
	in := Insights{
		TotalIncome:       totalIncome,
		MostSpentCategory: NoCategory,
	}
	for _, b := range budgets {
		in.TotalMonthlyBudget = in.TotalMonthlyBudget.Add(b.Monthly)
	}
	if len(expenses) == 0 {
		return in
	}

	in.MaxExpense = expenses[0].Amount
	in.MinExpense = expenses[0].Amount
	for _, e := range expenses {
		in.TotalExpenses = in.TotalExpenses.Add(e.Amount)
		if e.Amount.Cents > in.MaxExpense.Cents {
			in.MaxExpense = e.Amount
		}
		if e.Amount.Cents < in.MinExpense.Cents {
			in.MinExpense = e.Amount
		}
	}
	in.TotalTransactions = len(expenses)
	in.AvgDailyExpense = Mean(in.TotalExpenses, len(expenses))

	if top := CategoryBreakdown(expenses); len(top) > 0 {
		in.MostSpentCategory = string(top[0].Category)
	}
	return in
}

// CategoryBreakdown sums expenses per category, highest first. Equal sums
// are ordered by category name.
func CategoryBreakdown(expenses []Expense) []CategoryAmount {
	sums := make(map[Category]Money)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	out := make([]CategoryAmount, 0, len(sums))
	for c, m := range sums {
		out = append(out, CategoryAmount{Category: c, Amount: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend sums expenses per calendar month, oldest first. Months with
// no expenses between the first and the last one are emitted as zero.
func MonthlyTrend(expenses []Expense) []MonthTotal {
	if len(expenses) == 0 {
		return nil
	}
	sums := make(map[int]Money)
	first, last := monthIndex(expenses[0].Date), monthIndex(expenses[0].Date)
	for _, e := range expenses {
		k := monthIndex(e.Date)
		sums[k] = sums[k].Add(e.Amount)
		first = min(first, k)
		last = max(last, k)
	}
	out := make([]MonthTotal, 0, last-first+1)
	for k := first; k <= last; k++ {
		out = append(out, MonthTotal{Year: k / 12, Month: k%12 + 1, Amount: sums[k]})
	}
	return out
}

func monthIndex(d Date) int {
	return d.Year()*12 + d.Month() - 1
}

// SpendingInMonth sums expenses per category for one calendar month.
func SpendingInMonth(expenses []Expense, year, month int) map[Category]Money {
	out := make(map[Category]Money)
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out[e.Category] = out[e.Category].Add(e.Amount)
		}
	}
	return out
}
