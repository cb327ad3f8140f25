package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_JSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf, Component: ComponentInsights})

	logger.Info("computed", FieldCategory, "Food")
	logger.WithComponent(ComponentCache).Debug("miss")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, ComponentInsights, lines[0][FieldComponent])
	assert.Equal(t, "Food", lines[0][FieldCategory])
	assert.Equal(t, ComponentCache, lines[1][FieldComponent])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["msg"])
}

func TestAccessLog_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	h := Middleware(logger)(AccessLog(func(*http.Request) string { return "10.0.0.1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses/9", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.EqualValues(t, http.StatusNotFound, lines[0][FieldStatusCode])
	assert.Equal(t, "10.0.0.1", lines[0][FieldClientIP])
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: FormatJSON, Output: &buf}))

	sl.LogError(context.Background(), "save failed", errors.New("disk full"), ComponentStorage, OpCreate, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "disk full", lines[0][FieldError])
	assert.Equal(t, ComponentStorage, lines[0][FieldComponent])
	assert.Equal(t, OpCreate, lines[0][FieldOperation])
}

func TestStructuredLogger_ExpenseOperations(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: FormatJSON, Output: &buf}))
	ctx := context.Background()

	sl.LogExpenseCreated(ctx, 1, 1250, "Food", "Cash")
	sl.LogExpenseUpdated(ctx, 1, 1500, "Food", "Cash")
	sl.LogExpenseDeleted(ctx, 1, 1500, "Food", "Cash")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	for i, op := range []string{OpCreate, OpUpdate, OpDelete} {
		assert.Equal(t, op, lines[i][FieldOperation])
		assert.Equal(t, ComponentExpense, lines[i][FieldComponent])
		assert.EqualValues(t, 1, lines[i][FieldExpenseID])
	}
	assert.Equal(t, "Expense deleted successfully", lines[2]["msg"])
}

func TestFromContext_DefaultsWhenMissing(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}
