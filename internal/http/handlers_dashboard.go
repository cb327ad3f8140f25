package http

import (
	"net/http"
)

// handleDashboard renders the metrics, budget alerts, charts and the
// income panel.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := s.deps.Insights.Dashboard(ctx)
	if err != nil {
		s.renderFailure(w, r, "Dashboard load failed", err)
		return
	}
	income, err := s.deps.Income.ListIncome(ctx)
	if err != nil {
		s.renderFailure(w, r, "Income list failed", err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", newDashboardView(d, income, s.today()))
}

// renderFailure shows the error page with the status the error maps to.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logFailure(r, msg, err)
	s.render(w, r, statusFor(err), "error.html", page{Title: "Error", Error: publicMessage(err)})
}

func (s *Server) apiDashboard(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	d, err := s.deps.Insights.DashboardFor(r.Context(), p.Year, p.Month)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardJSON(d))
}

func (s *Server) apiInsights(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Insights.Dashboard(r.Context())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInsightsJSON(d.Insights))
}

// apiBudgetStatus evaluates every budget against ?year=&month=, default
// the current month.
func (s *Server) apiBudgetStatus(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query(), s.now())
	d, err := s.deps.Insights.DashboardFor(r.Context(), p.Year, p.Month)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	out := make([]budgetStatusJSON, 0, len(d.Statuses))
	for _, st := range d.Statuses {
		out = append(out, toBudgetStatusJSON(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":     d.Year,
		"month":    d.Month,
		"statuses": out,
	})
}
