package http

import (
	"net/http"

	"budgetly/internal/core"
)

// handleAddIncome records income from the dashboard panel.
func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	in, err := s.addIncome(w, r)
	if err != nil {
		if isHTMX(r) {
			logFailure(r, "Income add failed", err)
			ErrorResponse(statusFor(err), publicMessage(err)).Write(w)
			return
		}
		s.renderFailure(w, r, "Income add failed", err)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerIncomeChanged().
			TriggerFormReset().
			TriggerSuccessNotification("Income added successfully!").
			Message("success", "Income of "+core.FormatUSD(in.Amount)+" from "+in.Source+" added.").
			Write(w)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) addIncome(w http.ResponseWriter, r *http.Request) (core.Income, error) {
	p, err := parseBody(w, r, "add income")
	if err != nil {
		return core.Income{}, err
	}
	in, err := incomeFrom(p, s.today())
	if err != nil {
		return core.Income{}, err
	}
	return s.deps.Income.AddIncome(r.Context(), in)
}

func (s *Server) apiListIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.deps.Income.ListIncome(r.Context())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	out := make([]incomeJSON, 0, len(income))
	for _, in := range income {
		out = append(out, toIncomeJSON(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiAddIncome(w http.ResponseWriter, r *http.Request) {
	in, err := s.addIncome(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeJSON(in))
}
