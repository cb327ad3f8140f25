package google

import (
	"fmt"
	"strconv"
	"strings"

	"budgetly/internal/core"
)

// rowValues lays e out as columns A:E.
func rowValues(e core.Expense) []any {
	return []any{
		strconv.FormatInt(e.ID, 10),
		e.Date.String(),
		e.Amount.String(),
		string(e.Category),
		string(e.PaymentMethod),
	}
}

// rowOf returns the 1-based sheet row whose first column holds id, or 0.
// Header and blank rows never match.
func rowOf(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i + 1
		}
	}
	return 0
}
