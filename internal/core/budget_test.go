package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func dollars(n int64) Money { return Money{Cents: n * 100} }

func TestEvaluateBudget(t *testing.T) {
	budget := Budget{Category: Food, Monthly: dollars(100), Annual: dollars(1200)}

	cases := []struct {
		name      string
		spent     Money
		tier      BudgetTier
		remaining Money
		over      Money
	}{
		{"nearing at 85", dollars(85), TierNearing, dollars(15), Money{}},
		{"within at 70", dollars(70), TierWithin, dollars(30), Money{}},
		{"exceeded at 120", dollars(120), TierExceeded, dollars(-20), dollars(20)},
		{"exactly 80 percent is within", dollars(80), TierWithin, dollars(20), Money{}},
		{"one cent past 80 percent", Money{Cents: 8001}, TierNearing, Money{Cents: 1999}, Money{}},
		{"exactly at budget is nearing", dollars(100), TierNearing, Money{}, Money{}},
		{"one cent over", Money{Cents: 10001}, TierExceeded, Money{Cents: -1}, Money{Cents: 1}},
		{"nothing spent", Money{}, TierWithin, dollars(100), Money{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := EvaluateBudget(budget, tc.spent)
			assert.Equal(t, tc.tier, st.Tier)
			assert.Equal(t, tc.remaining, st.Remaining)
			assert.Equal(t, tc.over, st.Over())
			assert.Equal(t, tc.spent, st.Spent)
		})
	}
}

func TestEvaluateBudgetZeroBudget(t *testing.T) {
	assert.Equal(t, TierWithin, EvaluateBudget(Budget{Category: Rent}, Money{}).Tier)
	assert.Equal(t, TierExceeded, EvaluateBudget(Budget{Category: Rent}, Money{Cents: 1}).Tier)
}

func TestBudgetStatusMessage(t *testing.T) {
	b := Budget{Category: Food, Monthly: dollars(100)}
	assert.Equal(t, "You have exceeded your Food budget by $20.00!", EvaluateBudget(b, dollars(120)).Message())
	assert.Equal(t, "You are nearing your Food budget. Only $15.00 remaining.", EvaluateBudget(b, dollars(85)).Message())
	assert.Equal(t, "You are within your Food budget.", EvaluateBudget(b, dollars(70)).Message())
}

func TestEvaluateBudgetsDefaultsMissingSpendingToZero(t *testing.T) {
	budgets := []Budget{
		{Category: Food, Monthly: dollars(100)},
		{Category: Rent, Monthly: dollars(1000)},
	}
	got := EvaluateBudgets(budgets, map[Category]Money{Food: dollars(120)})
	if assert.Len(t, got, 2) {
		assert.Equal(t, TierExceeded, got[0].Tier)
		assert.Equal(t, Rent, got[1].Category)
		assert.Equal(t, Money{}, got[1].Spent)
		assert.Equal(t, TierWithin, got[1].Tier)
	}
}
