// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Arithmetic that can produce fractions of
// a cent (parsing, splitting into installments) goes through decimal.Decimal
// and is rounded half away from zero to two places.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to Money. Parsing is permissive: anything
// that is not a number yields zero. Both dot and comma separators are accepted.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("abc")    -> 0 cents
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	if !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d to cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// MoneyFromFloat rounds a float amount to cents.
func MoneyFromFloat(f float64) Money {
	return MoneyFromDecimal(decimal.NewFromFloat(f))
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Split divides m into n parts rounded to cents. The remainder is not redistributed.
func (m Money) Split(n int) Money {
	if n <= 1 {
		return m
	}
	return Money{Cents: decimal.NewFromInt(m.Cents).DivRound(decimal.NewFromInt(int64(n)), 0).IntPart()}
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) Mul(n int) Money {
	return Money{Cents: m.Cents * int64(n)}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Unparsable values
// decode to zero rather than failing the whole payload.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	*m = ParseAmount(strings.Trim(string(b), `"`))
	return nil
}
