package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"budgetly/internal/core"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	appweb "budgetly/web"
)

var templateFuncs = template.FuncMap{
	"usd": core.FormatUSD,
	"tierClass": func(t core.BudgetTier) string {
		switch t {
		case core.TierExceeded:
			return "exceeded"
		case core.TierNearing:
			return "nearing"
		default:
			return "within"
		}
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// page is embedded by every view model and drives the shared layout.
type page struct {
	Title  string
	Active string
	Flash  string
	Error  string
}

type formOptions struct {
	Categories     []core.Category
	PaymentMethods []core.PaymentMethod
	Today          string
}

func newFormOptions(today core.Date) formOptions {
	return formOptions{
		Categories:     core.Categories(),
		PaymentMethods: core.PaymentMethods(),
		Today:          today.String(),
	}
}

// bar is one row of a horizontal bar chart.
type bar struct {
	Label  string
	Amount core.Money
	Width  int
}

// scaleBars sizes bars as a rounded percentage of the largest amount.
// Non-zero values get at least 2% so they stay visible.
func scaleBars(labels []string, amounts []core.Money) []bar {
	var maxCents int64
	for _, a := range amounts {
		if a.Cents > maxCents {
			maxCents = a.Cents
		}
	}
	out := make([]bar, len(amounts))
	for i, a := range amounts {
		width := 0
		if maxCents > 0 && a.Cents > 0 {
			width = int((a.Cents*100 + maxCents/2) / maxCents)
			width = max(width, 2)
			width = min(width, 100)
		}
		out[i] = bar{Label: labels[i], Amount: a, Width: width}
	}
	return out
}

type dashboardView struct {
	page
	formOptions
	Dashboard insights.Dashboard
	Savings   core.Money
	Alerts    []core.BudgetStatus
	Breakdown []bar
	Trend     []bar
	Income    []core.Income
}

func newDashboardView(d insights.Dashboard, income []core.Income, today core.Date) dashboardView {
	v := dashboardView{
		page:        page{Title: "Dashboard", Active: "dashboard"},
		formOptions: newFormOptions(today),
		Dashboard:   d,
		Savings:     d.Insights.Savings(),
		Alerts:      d.Alerts(),
		Income:      income,
	}

	labels := make([]string, len(d.Breakdown))
	amounts := make([]core.Money, len(d.Breakdown))
	for i, c := range d.Breakdown {
		labels[i], amounts[i] = string(c.Category), c.Amount
	}
	v.Breakdown = scaleBars(labels, amounts)

	labels = make([]string, len(d.Trend))
	amounts = make([]core.Money, len(d.Trend))
	for i, m := range d.Trend {
		labels[i], amounts[i] = m.Label(), m.Amount
	}
	v.Trend = scaleBars(labels, amounts)
	return v
}

type expenseFormView struct {
	page
	formOptions
	Expense core.Expense
}

type transactionsView struct {
	page
	formOptions
	Expenses []core.Expense
	Total    core.Money
}

type budgetsView struct {
	page
	formOptions
	Budgets  []core.Budget
	Statuses []core.BudgetStatus
	Year     int
	Month    int
}

// render executes name into a buffer first so a template failure never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).
			ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).
			ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, fmt.Sprintf("render %s failed", name), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
