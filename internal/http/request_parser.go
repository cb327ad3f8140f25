// Package http serves the HTML views and the JSON API.
//
// This file turns request bodies (JSON or form-encoded, as sent by HTMX)
// into domain records. Every parse failure is a validation error so the
// caller can answer 422.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"budgetly/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from query parameters, falling
// back to now's month for missing or out-of-range values.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil && y >= 1 && y <= 9999 {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}
	return params
}

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. Bodies starting with '{' are JSON, anything else
// is form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}
	if body[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal([]byte(body), &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(body)
	return p.err
}

// Get returns the trimmed, control-character-free value of key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims s and drops control characters other than tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// parseBody parses r and wraps a malformed body as a validation error.
func parseBody(w http.ResponseWriter, r *http.Request, op string) (*RequestBodyParser, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return nil, core.Invalid(op, fmt.Errorf("malformed request body: %w", err))
	}
	return p, nil
}

// expenseFrom builds an expense from date, amount, category and
// payment_method fields. A missing date means today.
func expenseFrom(p *RequestBodyParser, today core.Date) (core.Expense, error) {
	const op = "parse expense"

	date := today
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Expense{}, core.Invalid(op, err)
		}
		date = d
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.Expense{}, core.Invalid(op, err)
	}
	cat, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		return core.Expense{}, core.Invalid(op, err)
	}
	method, err := core.ParsePaymentMethod(p.Get("payment_method"))
	if err != nil {
		return core.Expense{}, core.Invalid(op, err)
	}
	return core.Expense{Date: date, Amount: amount, Category: cat, PaymentMethod: method}, nil
}

// budgetFrom builds a budget from category, monthly_budget and
// annual_budget. A missing annual budget is twelve times the monthly one.
func budgetFrom(p *RequestBodyParser) (core.Budget, error) {
	const op = "parse budget"

	cat, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		return core.Budget{}, core.Invalid(op, err)
	}
	monthly, err := core.ParseMoney(p.Get("monthly_budget"))
	if err != nil {
		return core.Budget{}, core.Invalid(op, fmt.Errorf("monthly budget: %w", err))
	}
	annual := core.Money{Cents: monthly.Cents * 12}
	if v := p.Get("annual_budget"); v != "" {
		if annual, err = core.ParseMoney(v); err != nil {
			return core.Budget{}, core.Invalid(op, fmt.Errorf("annual budget: %w", err))
		}
	}
	b := core.Budget{Category: cat, Monthly: monthly, Annual: annual}
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.Invalid(op, err)
	}
	return b, nil
}

func incomeFrom(p *RequestBodyParser, today core.Date) (core.Income, error) {
	const op = "parse income"

	date := today
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Income{}, core.Invalid(op, err)
		}
		date = d
	}
	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.Income{}, core.Invalid(op, err)
	}
	return core.Income{Date: date, Amount: amount, Source: p.Get("source")}, nil
}

// idParam reads the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalid("parse id", fmt.Errorf("invalid expense id %q", raw))
	}
	return id, nil
}
