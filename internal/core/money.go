// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents, decimals and display strings.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxAmount is the largest value a NUMERIC(10,2) column can hold.
var MaxAmount = Money{Cents: 99_999_999_99}

var usd = message.NewPrinter(language.AmericanEnglish)

// ParseMoney converts a decimal string to cents.
//
// A leading "$" and thousands separators are accepted. Zero is accepted so
// budgets can be cleared; expenses and income reject it in Validate. Values
// that need more than two decimals are rejected, never rounded.
//
// Examples:
//
//	ParseMoney("12.34")     -> 1234
//	ParseMoney("$1,200")    -> 120000
//	ParseMoney("12.340")    -> 1234
//	ParseMoney("12.345")    -> ErrAmountPrecision
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// decimal accepts exponents; amounts typed by people never carry one
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if !d.Equal(d.Truncate(2)) {
		return Money{}, ErrAmountPrecision
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	return m, nil
}

// MoneyFromDecimal rounds d half-up to the cent and range-checks it.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(MaxAmount.Cents)) {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with two fixed decimals and no symbol, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

func (m Money) IsNegative() bool { return m.Cents < 0 }

// FormatUSD renders cents the way the dashboard shows them: "$1,234.56",
// with a leading minus for negative values.
func FormatUSD(m Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + usd.Sprintf("$%d.%02d", cents/100, cents%100)
}

// Mean divides total by n and rounds half-up to the cent. It returns zero
// when n is zero.
func Mean(total Money, n int) Money {
	if n <= 0 {
		return Money{}
	}
	avg := decimal.NewFromInt(total.Cents).DivRound(decimal.NewFromInt(int64(n)), 0)
	return Money{Cents: avg.IntPart()}
}
