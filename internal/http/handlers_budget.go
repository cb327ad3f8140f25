package http

import (
	"net/http"

	"budgetly/internal/core"
)

// handleBudgets lists budgets with their status for the current month.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	v, err := s.budgetsView(r)
	if err != nil {
		s.renderFailure(w, r, "Budgets load failed", err)
		return
	}
	if r.URL.Query().Get("flash") == "saved" {
		v.Flash = "Budget saved successfully!"
	}
	s.render(w, r, http.StatusOK, "budgets.html", v)
}

func (s *Server) budgetsView(r *http.Request) (budgetsView, error) {
	ctx := r.Context()
	budgets, err := s.deps.Budgets.ListBudgets(ctx)
	if err != nil {
		return budgetsView{}, err
	}
	d, err := s.deps.Insights.Dashboard(ctx)
	if err != nil {
		return budgetsView{}, err
	}
	return budgetsView{
		page:        page{Title: "Manage Budgets", Active: "budgets"},
		formOptions: newFormOptions(s.today()),
		Budgets:     budgets,
		Statuses:    d.Statuses,
		Year:        d.Year,
		Month:       d.Month,
	}, nil
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.upsertBudget(w, r)
	if err != nil {
		logFailure(r, "Budget upsert failed", err)
		if isHTMX(r) {
			ErrorResponse(statusFor(err), publicMessage(err)).Write(w)
			return
		}
		v, verr := s.budgetsView(r)
		if verr != nil {
			s.renderFailure(w, r, "Budgets load failed", verr)
			return
		}
		v.Error = publicMessage(err)
		s.render(w, r, statusFor(err), "budgets.html", v)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerBudgetChanged(b.Category).
			TriggerSuccessNotification("Budget saved successfully!").
			Header("HX-Redirect", "/budgets?flash=saved").
			Write(w)
		return
	}
	http.Redirect(w, r, "/budgets?flash=saved", http.StatusSeeOther)
}

func (s *Server) upsertBudget(w http.ResponseWriter, r *http.Request) (core.Budget, error) {
	p, err := parseBody(w, r, "upsert budget")
	if err != nil {
		return core.Budget{}, err
	}
	b, err := budgetFrom(p)
	if err != nil {
		return core.Budget{}, err
	}
	return b, s.deps.Budgets.UpsertBudget(r.Context(), b)
}

func (s *Server) apiListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Budgets.ListBudgets(r.Context())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetJSON{Category: string(b.Category), MonthlyBudget: b.Monthly.String(), AnnualBudget: b.Annual.String()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiUpsertBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.upsertBudget(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetJSON{Category: string(b.Category), MonthlyBudget: b.Monthly.String(), AnnualBudget: b.Annual.String()})
}
