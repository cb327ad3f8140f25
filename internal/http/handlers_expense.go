package http

import (
	"net/http"
	"strconv"

	"budgetly/internal/core"
)

var transactionFlashes = map[string]string{
	"updated": "Expense updated successfully!",
	"deleted": "Expense deleted successfully!",
}

func (s *Server) handleNewExpense(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "add_expense.html", s.expenseForm())
}

func (s *Server) expenseForm() expenseFormView {
	return expenseFormView{
		page:        page{Title: "Add Expense", Active: "add"},
		formOptions: newFormOptions(s.today()),
	}
}

// handleCreateExpense answers HTMX with a notice fragment and plain form
// posts with the re-rendered form.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.createExpense(w, r)
	if err != nil {
		logFailure(r, "Expense create failed", err)
		if isHTMX(r) {
			ErrorResponse(statusFor(err), publicMessage(err)).Write(w)
			return
		}
		v := s.expenseForm()
		v.Error = publicMessage(err)
		s.render(w, r, statusFor(err), "add_expense.html", v)
		return
	}

	const msg = "Expense added successfully!"
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerExpenseChanged(e.Date).
			TriggerFormReset().
			TriggerSuccessNotification(msg).
			Message("success", msg).
			Write(w)
		return
	}
	v := s.expenseForm()
	v.Flash = msg
	v.Expense = e
	s.render(w, r, http.StatusOK, "add_expense.html", v)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	p, err := parseBody(w, r, "create expense")
	if err != nil {
		return core.Expense{}, err
	}
	e, err := expenseFrom(p, s.today())
	if err != nil {
		return core.Expense{}, err
	}
	return s.deps.Expenses.AddExpense(r.Context(), e)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.deps.Expenses.ListExpenses(r.Context())
	if err != nil {
		s.renderFailure(w, r, "Expense list failed", err)
		return
	}
	v := transactionsView{
		page:        page{Title: "All Transactions", Active: "transactions", Flash: transactionFlashes[r.URL.Query().Get("flash")]},
		formOptions: newFormOptions(s.today()),
		Expenses:    expenses,
	}
	for _, e := range expenses {
		v.Total = v.Total.Add(e.Amount)
	}
	s.render(w, r, http.StatusOK, "transactions.html", v)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.updateExpense(w, r)
	if err != nil {
		if isHTMX(r) {
			logFailure(r, "Expense update failed", err)
			ErrorResponse(statusFor(err), publicMessage(err)).Write(w)
			return
		}
		s.renderFailure(w, r, "Expense update failed", err)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerExpenseChanged(e.Date).
			TriggerSuccessNotification(transactionFlashes["updated"]).
			Header("HX-Redirect", "/transactions?flash=updated").
			Write(w)
		return
	}
	http.Redirect(w, r, "/transactions?flash=updated", http.StatusSeeOther)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	id, err := idParam(r)
	if err != nil {
		return core.Expense{}, err
	}
	p, err := parseBody(w, r, "update expense")
	if err != nil {
		return core.Expense{}, err
	}
	e, err := expenseFrom(p, s.today())
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	return e, s.deps.Expenses.UpdateExpense(r.Context(), e)
}

// handleDeleteExpense serves both POST /expenses/{id}/delete from plain
// forms and DELETE /expenses/{id} from HTMX. HTMX gets an empty 200 so
// the row can be swapped out.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err == nil {
		err = s.deps.Expenses.DeleteExpense(r.Context(), id)
	}
	if err != nil {
		if isHTMX(r) {
			logFailure(r, "Expense delete failed", err)
			ErrorResponse(statusFor(err), publicMessage(err)).Write(w)
			return
		}
		s.renderFailure(w, r, "Expense delete failed", err)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().
			Trigger("expense:changed", map[string]int64{"id": id}).
			TriggerSuccessNotification(transactionFlashes["deleted"]).
			Write(w)
		return
	}
	http.Redirect(w, r, "/transactions?flash=deleted", http.StatusSeeOther)
}

func (s *Server) apiListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.deps.Expenses.ListExpenses(r.Context())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.createExpense(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/expenses/"+strconv.FormatInt(e.ID, 10))
	writeJSON(w, http.StatusCreated, toExpenseJSON(e))
}

func (s *Server) apiGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	e, err := s.deps.Expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) apiUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.updateExpense(w, r)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) apiDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err == nil {
		err = s.deps.Expenses.DeleteExpense(r.Context(), id)
	}
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
