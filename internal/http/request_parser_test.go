package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
)

func parserFor(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	p := NewRequestBodyParser(httptest.NewRecorder(), r)
	require.NoError(t, p.Parse())
	return p
}

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		query     string
		wantYear  int
		wantMonth int
	}{
		{"", 2025, 8},
		{"year=2024&month=2", 2024, 2},
		{"month=13", 2025, 8},
		{"year=abc&month=0", 2025, 8},
		{"year= 2023 ", 2023, 8},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got := ParseMonthParams(q, now)
		assert.Equal(t, MonthParams{Year: tt.wantYear, Month: tt.wantMonth}, got, tt.query)
	}
}

func TestRequestBodyParser_FormAndJSON(t *testing.T) {
	form := parserFor(t, "amount=12.50&category=food&source=%20Pay%01check%20")
	assert.False(t, form.IsJSON())
	assert.Equal(t, "12.50", form.Get("amount"))
	assert.Equal(t, "Paycheck", form.Get("source"))
	assert.Equal(t, "", form.Get("missing"))

	js := parserFor(t, `{"amount": 12.5, "category": "Food", "flag": true, "nested": {"a": 1}}`)
	assert.True(t, js.IsJSON())
	assert.Equal(t, "12.5", js.Get("amount"))
	assert.Equal(t, "true", js.Get("flag"))
	assert.Equal(t, "", js.Get("nested"))
}

func TestRequestBodyParser_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	_, err := parseBody(httptest.NewRecorder(), r, "test")
	assert.True(t, core.IsValidation(err))
}

func TestExpenseFrom(t *testing.T) {
	today := core.NewDate(2025, 3, 1)

	e, err := expenseFrom(parserFor(t, "date=2025-02-14&amount=$1,200.456&category=rent&payment_method=online transfer"), today)
	require.NoError(t, err)
	assert.Equal(t, core.Expense{
		Date:          core.NewDate(2025, 2, 14),
		Amount:        core.Money{Cents: 120046},
		Category:      core.Rent,
		PaymentMethod: core.OnlineTransfer,
	}, e)

	e, err = expenseFrom(parserFor(t, `{"amount":"3","category":"Food","payment_method":"Cash"}`), today)
	require.NoError(t, err)
	assert.Equal(t, today, e.Date, "missing date defaults to today")

	bad := []string{
		"date=2025-13-01&amount=1&category=Food&payment_method=Cash",
		"amount=abc&category=Food&payment_method=Cash",
		"amount=1&category=Pets&payment_method=Cash",
		"amount=1&category=Food&payment_method=Cheque",
	}
	for _, body := range bad {
		_, err := expenseFrom(parserFor(t, body), today)
		assert.True(t, core.IsValidation(err), body)
	}
}

func TestBudgetFrom(t *testing.T) {
	b, err := budgetFrom(parserFor(t, "category=Food&monthly_budget=400"))
	require.NoError(t, err)
	assert.Equal(t, int64(40000), b.Monthly.Cents)
	assert.Equal(t, int64(480000), b.Annual.Cents, "annual defaults to twelve months")

	b, err = budgetFrom(parserFor(t, "category=Food&monthly_budget=0&annual_budget=100"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Monthly.Cents)
	assert.Equal(t, int64(10000), b.Annual.Cents)

	_, err = budgetFrom(parserFor(t, "category=Food&monthly_budget=-5"))
	assert.True(t, core.IsValidation(err))

	_, err = budgetFrom(parserFor(t, "category=Food&monthly_budget=99999999.99"))
	assert.True(t, core.IsValidation(err), "derived annual exceeds the column limit")
	assert.ErrorIs(t, err, core.ErrAmountTooLarge)
}

func TestIncomeFrom(t *testing.T) {
	in, err := incomeFrom(parserFor(t, "date=2025-01-31&amount=2500&source=Salary"), core.NewDate(2025, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, core.Income{Date: core.NewDate(2025, 1, 31), Amount: core.Money{Cents: 250000}, Source: "Salary"}, in)
}
