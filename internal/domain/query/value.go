// Package query is the generic filter, sort and paginate engine shared by
// every list screen. Entities plug in through a Schema describing their
// closed set of fields.
package query

import (
	"github.com/shopspring/decimal"
)

// Kind is the comparison semantics of a field
type Kind int

const (
	// KindString compares with pt-BR collation
	KindString Kind = iota
	// KindNumber compares decimal values
	KindNumber
	// KindDate compares ISO "YYYY-MM-DD" strings
	KindDate
)

// Value is a field value extracted from an entity
type Value struct {
	Null bool
	Str  string
	Num  decimal.Decimal
}

// Null is the absent value
func Null() Value { return Value{Null: true} }

// Str wraps a string value
func Str(s string) Value { return Value{Str: s} }

// StrPtr wraps an optional string; nil is null
func StrPtr(s *string) Value {
	if s == nil {
		return Null()
	}
	return Str(*s)
}

// Date wraps an ISO date; the empty string is null
func Date(s string) Value {
	if s == "" {
		return Null()
	}
	return Value{Str: s}
}

// Num wraps a decimal value
func Num(d decimal.Decimal) Value { return Value{Num: d} }

// NumPtr wraps an optional decimal; nil is null
func NumPtr(d *decimal.Decimal) Value {
	if d == nil {
		return Null()
	}
	return Num(*d)
}

// Field describes one sortable/filterable attribute of T
type Field[T any] struct {
	Kind Kind
	// Column is the backing store column. Empty for derived fields such as
	// resolved display names, which can only be handled in memory.
	Column string
	Get    func(item *T) Value
}

// Derived reports whether the field has no store column
func (f Field[T]) Derived() bool {
	return f.Column == ""
}
