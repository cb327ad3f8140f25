package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
	"budgetly/internal/storage/memory"
)

type harness struct {
	store *memory.Store
}

func newHarness() *harness {
	return &harness{store: memory.New()}
}

// run executes budgetctl with args against the harness store.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(func(context.Context, bool) (*App, error) {
		return NewApp(h.store, nil), nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, path := range [][]string{
		{"expense", "add"}, {"expense", "list"}, {"expense", "update"}, {"expense", "delete"},
		{"budget", "set"}, {"budget", "list"}, {"budget", "status"}, {"budget", "import"}, {"budget", "export"},
		{"income", "add"}, {"income", "list"},
		{"insights"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "%v", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := newHarness().run(t, "--format", "xml", "budget", "list")
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestExpenseLifecycle(t *testing.T) {
	h := newHarness()

	out := h.mustRun(t, "--format", "json", "expense", "add",
		"--date", "2025-06-10", "--amount", "$1,250.00", "--category", "food", "--method", "debit card")
	var added expenseRecord
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, expenseRecord{ID: 1, Date: "2025-06-10", Amount: "1250.00", Category: "Food", PaymentMethod: "Debit Card"}, added)

	h.mustRun(t, "expense", "add", "--date", "2025-05-01", "--amount", "10", "--category", "Rent", "--method", "Cash")

	out = h.mustRun(t, "expense", "list")
	assert.Contains(t, out, "1250.00")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "1260.00")

	out = h.mustRun(t, "expense", "list", "--month", "2025-05")
	assert.NotContains(t, out, "1250.00")
	assert.Contains(t, out, "Rent")

	out = h.mustRun(t, "expense", "update", "1", "--amount", "20")
	assert.Contains(t, out, "Updated expense 1: $20.00 Food on 2025-06-10 (Debit Card)")

	got, err := h.store.GetExpense(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.Amount.Cents)
	assert.Equal(t, core.Food, got.Category)

	out = h.mustRun(t, "expense", "delete", "1")
	assert.Contains(t, out, "Deleted expense 1")

	_, err = h.run(t, "expense", "delete", "1")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestExpenseAddValidation(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name string
		args []string
	}{
		{"negative amount", []string{"--amount", "-5", "--category", "Food", "--method", "Cash"}},
		{"zero amount", []string{"--amount", "0", "--category", "Food", "--method", "Cash"}},
		{"unknown category", []string{"--amount", "5", "--category", "Pets", "--method", "Cash"}},
		{"unknown method", []string{"--amount", "5", "--category", "Food", "--method", "Cheque"}},
		{"bad date", []string{"--date", "10/06/2025", "--amount", "5", "--category", "Food", "--method", "Cash"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(t, append([]string{"expense", "add"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, ExitCode(err))
		})
	}

	_, err := h.run(t, "expense", "add", "--amount", "5")
	assert.ErrorContains(t, err, "required flag")

	expenses, err := h.store.ListExpenses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestBudgetCommands(t *testing.T) {
	h := newHarness()

	out := h.mustRun(t, "budget", "set", "food", "100")
	assert.Contains(t, out, "Set Food budget: $100.00 monthly, $1,200.00 annual")

	h.mustRun(t, "budget", "set", "Transport", "50", "--annual", "500")
	h.mustRun(t, "expense", "add", "--date", "2025-06-02", "--amount", "90", "--category", "Food", "--method", "Cash")

	out = h.mustRun(t, "budget", "list")
	assert.Contains(t, out, "Transport")
	assert.Contains(t, out, "500.00")

	out = h.mustRun(t, "--format", "json", "budget", "status", "--month", "2025-06")
	var statuses []statusRecord
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "Food", statuses[0].Category)
	assert.Equal(t, string(core.TierNearing), statuses[0].Tier)
	assert.Equal(t, "You are nearing your Food budget. Only $10.00 remaining.", statuses[0].Message)
	assert.Equal(t, string(core.TierWithin), statuses[1].Tier)

	_, err := h.run(t, "budget", "status", "--month", "June")
	assert.Equal(t, ExitCommandError, ExitCode(err))

	_, err = h.run(t, "budget", "set", "Food", "-1")
	assert.Equal(t, ExitCommandError, ExitCode(err))

	_, err = h.run(t, "budget", "set", "Rent", "99999999.99")
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.ErrorIs(t, err, core.ErrAmountTooLarge)
}

func TestBudgetExportImportRoundTrip(t *testing.T) {
	src := newHarness()
	src.mustRun(t, "budget", "set", "Food", "100")
	src.mustRun(t, "budget", "set", "Rent", "1200", "--annual", "14000")

	path := filepath.Join(t.TempDir(), "budgets.yaml")
	src.mustRun(t, "budget", "export", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "category: Food")
	assert.Contains(t, string(data), `annual: "14000.00"`)

	dst := newHarness()
	out := dst.mustRun(t, "budget", "import", path)
	assert.Contains(t, out, "Imported 2 budgets")

	got, err := dst.store.ListBudgets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1400000), got[1].Annual.Cents)

	out = src.mustRun(t, "budget", "export")
	assert.Contains(t, out, "budgets:")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("budgets:\n  - category: Pets\n    monthly: \"10\"\n"), 0o600))
	_, err = dst.run(t, "budget", "import", bad)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestIncomeAndInsights(t *testing.T) {
	h := newHarness()

	out := h.mustRun(t, "income", "add", "--date", "2025-06-01", "--amount", "3000", "--source", " Salary ")
	assert.Contains(t, out, "Added income 1: $3,000.00 from Salary on 2025-06-01")

	_, err := h.run(t, "income", "add", "--amount", "10", "--source", "   ")
	assert.Equal(t, ExitCommandError, ExitCode(err))

	out = h.mustRun(t, "income", "list")
	assert.Contains(t, out, "Salary")

	h.mustRun(t, "budget", "set", "Food", "100")
	h.mustRun(t, "expense", "add", "--date", "2025-06-02", "--amount", "150", "--category", "Food", "--method", "Cash")
	h.mustRun(t, "expense", "add", "--date", "2025-06-03", "--amount", "50", "--category", "Transport", "--method", "Cash")

	out = h.mustRun(t, "--format", "json", "insights", "--month", "2025-06")
	var rep insightsReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "200.00", rep.TotalExpenses)
	assert.Equal(t, "100.00", rep.AvgDailyExpense)
	assert.Equal(t, "150.00", rep.MaxExpense)
	assert.Equal(t, "50.00", rep.MinExpense)
	assert.Equal(t, 2, rep.TotalTransactions)
	assert.Equal(t, "2800.00", rep.Savings)
	assert.Equal(t, "Food", rep.MostSpentCategory)
	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, "You have exceeded your Food budget by $50.00!", rep.Alerts[0].Message)

	out = h.mustRun(t, "insights", "--month", "2025-06")
	assert.Contains(t, out, "Savings")
	assert.Contains(t, out, "$2,800.00")
	assert.Contains(t, out, "Alerts for 2025-06")
}

func TestOpenFailureIsReported(t *testing.T) {
	cmd := NewRootCommand(func(context.Context, bool) (*App, error) {
		return nil, errors.New("dial tcp: connection refused")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"budget", "list"})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "open store")
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)

	y, m, err := parseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2025, 3}, [2]int{y, m})

	y, m, err = parseMonth("2024-12", now)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2024, 12}, [2]int{y, m})

	_, _, err = parseMonth("2024-13", now)
	assert.True(t, core.IsValidation(err))
}
