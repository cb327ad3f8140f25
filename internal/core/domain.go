package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in SQLite.
const DateLayout = "2006-01-02"

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Rent          Category = "Rent"
	Entertainment Category = "Entertainment"
	Utilities     Category = "Utilities"
	Other         Category = "Other"
)

const (
	CreditCard     PaymentMethod = "Credit Card"
	DebitCard      PaymentMethod = "Debit Card"
	Cash           PaymentMethod = "Cash"
	OnlineTransfer PaymentMethod = "Online Transfer"
)

const maxSourceLength = 100

type (
	// Category classifies an expense or a budget. It is a soft link between
	// the two: budgets are keyed by category, expenses carry one.
	Category string

	PaymentMethod string

	// Date is a calendar date without time-of-day, always normalized to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID            int64
		Date          Date
		Amount        Money
		Category      Category
		PaymentMethod PaymentMethod
	}

	Budget struct {
		Category Category
		Monthly  Money
		Annual   Money
	}

	Income struct {
		ID     int64
		Date   Date
		Amount Money
		Source string
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
	ErrAmountTooLarge       = errors.New("amount exceeds 99,999,999.99")
	ErrAmountPrecision      = errors.New("amount has more than two decimal places")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptySource          = errors.New("empty income source")
	ErrSourceTooLong        = errors.New("income source too long (max 100 characters)")
)

var (
	categories     = []Category{Food, Transport, Rent, Entertainment, Utilities, Other}
	paymentMethods = []PaymentMethod{CreditCard, DebitCard, Cash, OnlineTransfer}
)

// Categories returns the closed set of categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// PaymentMethods returns the closed set of payment methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory matches s against the known categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, v := range categories {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", ErrInvalidCategory
}

func (p PaymentMethod) Valid() bool {
	for _, v := range paymentMethods {
		if p == v {
			return true
		}
	}
	return false
}

func (p PaymentMethod) String() string { return string(p) }

// ParsePaymentMethod matches s against the known payment methods, ignoring
// case and surrounding whitespace.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	for _, v := range paymentMethods {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", ErrInvalidPaymentMethod
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Validate requires a strictly positive amount that fits NUMERIC(10,2).
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmount.Cents {
		return ErrAmountTooLarge
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if b.Monthly.Cents < 0 || b.Annual.Cents < 0 {
		return ErrNegativeAmount
	}
	if b.Monthly.Cents > MaxAmount.Cents || b.Annual.Cents > MaxAmount.Cents {
		return ErrAmountTooLarge
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	src := strings.TrimSpace(i.Source)
	if src == "" {
		return ErrEmptySource
	}
	if len([]rune(src)) > maxSourceLength {
		return ErrSourceTooLong
	}
	return nil
}
