package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetly/internal/core"
)

type EventType string

const (
	ExpenseCreated EventType = "expense.created"
	ExpenseUpdated EventType = "expense.updated"
	ExpenseDeleted EventType = "expense.deleted"
	BudgetUpserted EventType = "budget.upserted"
	IncomeAdded    EventType = "income.added"
)

// Event announces a committed mutation. Expense events carry the expense
// as it was after (or, for deletes, before) the change so consumers can
// act without reading the store.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ExpenseID     int64     `json:"expense_id,omitempty"`
	IncomeID      int64     `json:"income_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	PrevDate      string    `json:"prev_date,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Category      string    `json:"category,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func newEvent(t EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
	}
}

// NewExpenseEvent builds an expense.* event from e.
func NewExpenseEvent(t EventType, e core.Expense) Event {
	ev := newEvent(t)
	ev.ExpenseID = e.ID
	ev.Date = e.Date.String()
	ev.AmountCents = e.Amount.Cents
	ev.Category = string(e.Category)
	ev.PaymentMethod = string(e.PaymentMethod)
	return ev
}

// NewExpenseUpdatedEvent carries e and the date it had before the update,
// so consumers can revisit the month the expense left.
func NewExpenseUpdatedEvent(prev, e core.Expense) Event {
	ev := NewExpenseEvent(ExpenseUpdated, e)
	ev.PrevDate = prev.Date.String()
	return ev
}

func NewBudgetEvent(b core.Budget) Event {
	ev := newEvent(BudgetUpserted)
	ev.Category = string(b.Category)
	ev.AmountCents = b.Monthly.Cents
	return ev
}

func NewIncomeEvent(in core.Income) Event {
	ev := newEvent(IncomeAdded)
	ev.IncomeID = in.ID
	ev.Date = in.Date.String()
	ev.AmountCents = in.Amount.Cents
	return ev
}

// Expense rebuilds the expense carried by an expense.* event.
func (e Event) Expense() (core.Expense, error) {
	d, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("event %s: %w", e.ID, err)
	}
	return core.Expense{
		ID:            e.ExpenseID,
		Date:          d,
		Amount:        core.Money{Cents: e.AmountCents},
		Category:      core.Category(e.Category),
		PaymentMethod: core.PaymentMethod(e.PaymentMethod),
	}, nil
}

// PrevMonth reports the month of PrevDate. ok is false when the event has
// no previous date.
func (e Event) PrevMonth() (year, month int, ok bool) {
	if e.PrevDate == "" {
		return 0, 0, false
	}
	d, err := core.ParseDate(e.PrevDate)
	if err != nil {
		return 0, 0, false
	}
	return d.Year(), d.Month(), true
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects ones without id or type.
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, fmt.Errorf("event missing id or type")
	}
	return &ev, nil
}
