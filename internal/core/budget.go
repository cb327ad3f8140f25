package core

import "fmt"

// BudgetTier is the alert level of a category for the current month.
type BudgetTier string

const (
	TierWithin   BudgetTier = "within budget"
	TierNearing  BudgetTier = "nearing limit"
	TierExceeded BudgetTier = "exceeded"
)

// BudgetStatus compares one budget with the spending of a month.
type BudgetStatus struct {
	Category  Category
	Monthly   Money
	Spent     Money
	Remaining Money
	Tier      BudgetTier
}

// Over is the amount past the monthly budget, zero unless exceeded.
func (s BudgetStatus) Over() Money {
	if s.Tier != TierExceeded {
		return Money{}
	}
	return s.Remaining.Neg()
}

// Message is the human readable alert for the status.
func (s BudgetStatus) Message() string {
	switch s.Tier {
	case TierExceeded:
		return fmt.Sprintf("You have exceeded your %s budget by %s!", s.Category, FormatUSD(s.Over()))
	case TierNearing:
		return fmt.Sprintf("You are nearing your %s budget. Only %s remaining.", s.Category, FormatUSD(s.Remaining))
	default:
		return fmt.Sprintf("You are within your %s budget.", s.Category)
	}
}

// EvaluateBudget classifies spent against b.Monthly.
//
// remaining < 0 is exceeded; remaining < 20% of the monthly budget is
// nearing; anything else is within. Both comparisons are strict and done in
// cents: remaining < monthly/5 is evaluated as remaining*5 < monthly.
func EvaluateBudget(b Budget, spent Money) BudgetStatus {
	remaining := b.Monthly.Sub(spent)
	st := BudgetStatus{
		Category:  b.Category,
		Monthly:   b.Monthly,
		Spent:     spent,
		Remaining: remaining,
	}
	switch {
	case remaining.Cents < 0:
		st.Tier = TierExceeded
	case remaining.Cents*5 < b.Monthly.Cents:
		st.Tier = TierNearing
	default:
		st.Tier = TierWithin
	}
	return st
}

// EvaluateBudgets evaluates every budget against the spending map. Missing
// categories count as zero spending. Order follows budgets.
func EvaluateBudgets(budgets []Budget, spending map[Category]Money) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, EvaluateBudget(b, spending[b.Category]))
	}
	return out
}
