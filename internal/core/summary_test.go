package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(amount int64, c Category, d Date) Expense {
	return Expense{Date: d, Amount: dollars(amount), Category: c, PaymentMethod: Cash}
}

func TestComputeInsightsEmpty(t *testing.T) {
	in := ComputeInsights(nil, nil, Money{})
	assert.Equal(t, Insights{MostSpentCategory: NoCategory}, in)
	assert.Equal(t, Money{}, in.Savings())
}

func TestComputeInsights(t *testing.T) {
	d := NewDate(2025, 5, 1)
	expenses := []Expense{
		expense(100, Food, d),
		expense(50, Food, d),
		expense(30, Transport, d),
	}
	budgets := []Budget{
		{Category: Food, Monthly: dollars(200), Annual: dollars(2400)},
		{Category: Transport, Monthly: dollars(50), Annual: dollars(600)},
	}
	in := ComputeInsights(expenses, budgets, dollars(500))

	assert.Equal(t, dollars(180), in.TotalExpenses)
	assert.Equal(t, dollars(100), in.MaxExpense)
	assert.Equal(t, dollars(30), in.MinExpense)
	assert.Equal(t, dollars(60), in.AvgDailyExpense)
	assert.Equal(t, 3, in.TotalTransactions)
	assert.Equal(t, "Food", in.MostSpentCategory)
	assert.Equal(t, dollars(250), in.TotalMonthlyBudget)
	assert.Equal(t, dollars(500), in.TotalIncome)
	assert.Equal(t, dollars(320), in.Savings())
}

func TestComputeInsightsBudgetsWithoutExpenses(t *testing.T) {
	in := ComputeInsights(nil, []Budget{{Category: Rent, Monthly: dollars(900)}}, dollars(10))
	assert.Equal(t, dollars(900), in.TotalMonthlyBudget)
	assert.Equal(t, NoCategory, in.MostSpentCategory)
	assert.Equal(t, dollars(10), in.Savings())
}

func TestSavingsCanBeNegative(t *testing.T) {
	in := ComputeInsights([]Expense{expense(70, Rent, NewDate(2025, 1, 1))}, nil, dollars(20))
	assert.Equal(t, dollars(-50), in.Savings())
}

func TestCategoryBreakdownTieBreaksByName(t *testing.T) {
	d := NewDate(2025, 1, 1)
	got := CategoryBreakdown([]Expense{
		expense(40, Utilities, d),
		expense(40, Entertainment, d),
		expense(90, Rent, d),
	})
	require.Len(t, got, 3)
	assert.Equal(t, []Category{Rent, Entertainment, Utilities},
		[]Category{got[0].Category, got[1].Category, got[2].Category})
	assert.Equal(t, "Entertainment", ComputeInsights([]Expense{
		expense(40, Utilities, d),
		expense(40, Entertainment, d),
	}, nil, Money{}).MostSpentCategory)
}

func TestMonthlyTrendFillsGaps(t *testing.T) {
	got := MonthlyTrend([]Expense{
		expense(10, Food, NewDate(2025, 2, 10)),
		expense(5, Food, NewDate(2024, 11, 3)),
		expense(7, Rent, NewDate(2025, 2, 28)),
	})
	require.Len(t, got, 4)
	assert.Equal(t, MonthTotal{Year: 2024, Month: 11, Amount: dollars(5)}, got[0])
	assert.Equal(t, MonthTotal{Year: 2024, Month: 12}, got[1])
	assert.Equal(t, MonthTotal{Year: 2025, Month: 1}, got[2])
	assert.Equal(t, MonthTotal{Year: 2025, Month: 2, Amount: dollars(17)}, got[3])
	assert.Equal(t, "Feb 2025", got[3].Label())
	assert.Nil(t, MonthlyTrend(nil))
}

func TestSpendingInMonth(t *testing.T) {
	got := SpendingInMonth([]Expense{
		expense(10, Food, NewDate(2025, 3, 1)),
		expense(15, Food, NewDate(2025, 3, 31)),
		expense(99, Food, NewDate(2024, 3, 15)),
		expense(20, Transport, NewDate(2025, 4, 1)),
	}, 2025, 3)
	assert.Equal(t, map[Category]Money{Food: dollars(25)}, got)
}
