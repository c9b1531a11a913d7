// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing and formatting go through
// shopspring/decimal so that no float arithmetic touches a stored value.
package core

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents bounds parsed values so that sums over a personal ledger
// cannot overflow int64.
var maxCents = decimal.New(1, 15)

// maxUnits is maxCents in currency units, checked before any decimal work.
const maxUnits = 1e13

// plainNumber is the only accepted input form: no exponents, no grouping.
var plainNumber = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

// ParseDecimal converts a decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign. Zero and negative values are returned as-is; callers that
// need a strictly positive amount use ParseAmount.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234
//	ParseDecimal("12,345") -> 1235 (rounds up)
//	ParseDecimal("-5")     -> -500
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	s = strings.ReplaceAll(s, ",", ".")
	if !plainNumber.MatchString(s) {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return toCents(d)
}

func toCents(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseAmount is ParseDecimal restricted to values greater than zero.
func ParseAmount(s string) (Money, error) {
	m, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, &ValidationError{Field: "amount", Err: err}
	}
	return m, nil
}

// MoneyFromFloat converts a persisted float amount to cents, rounding half-up.
// NaN, infinities and values beyond the parse bound are rejected.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxUnits {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return toCents(decimal.NewFromFloat(f))
}

// Float returns the value in currency units, for serialization only.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// Decimal returns the value in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the value with two fraction digits, e.g. "-1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }
