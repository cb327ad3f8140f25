package core

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can react without string matching.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConnection
	KindQuery
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindQuery:
		return "query"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ErrNotFound is the cause carried by KindNotFound errors built with NotFound.
var ErrNotFound = errors.New("not found")

// Error is the error type returned across the store and service boundary.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. A nil err yields nil so call sites can wrap blindly.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op string, what string, id any) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("%s %v: %w", what, id, ErrNotFound)}
}

func Invalid(op string, err error) error {
	return E(KindValidation, op, err)
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
