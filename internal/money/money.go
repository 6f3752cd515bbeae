// Package money implements fixed-point currency values. Amounts are stored
// as int64 minor units (cents) at a fixed scale of 2 decimal places; all
// arithmetic is exact integer arithmetic. Construction from decimal strings
// rounds half-up to the fixed scale.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the system-wide number of decimal places. Values with a
// different scale never exist; mixed-scale arithmetic is unrepresentable.
const Scale = 2

// ErrOutOfRange indicates the int64 minor-unit representation would
// overflow. It signals a broken invariant and must propagate, never be
// swallowed.
var ErrOutOfRange = errors.New("money: amount out of range")

var (
	maxUnits = decimal.NewFromInt(math.MaxInt64)
	minUnits = decimal.NewFromInt(math.MinInt64)
)

// Money is an exact currency amount. The zero value is zero dollars.
type Money struct {
	units int64
}

// FromUnits builds a Money from a raw minor-unit count.
func FromUnits(units int64) Money {
	return Money{units: units}
}

// FromString parses a decimal string such as "250.00" or "-500", rounding
// half-up to the fixed scale. It returns ErrOutOfRange if the amount does
// not fit the int64 minor-unit representation.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}

	shifted := d.Round(Scale).Shift(Scale)
	if shifted.Cmp(maxUnits) > 0 || shifted.Cmp(minUnits) < 0 {
		return Money{}, fmt.Errorf("money: amount %q: %w", s, ErrOutOfRange)
	}

	return Money{units: shifted.IntPart()}, nil
}

// MustFromString is FromString for trusted literals; it panics on error.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Units returns the raw minor-unit count.
func (m Money) Units() int64 { return m.units }

// Add returns m + other, or ErrOutOfRange on int64 overflow.
func (m Money) Add(other Money) (Money, error) {
	sum := m.units + other.units
	if (other.units > 0 && sum < m.units) || (other.units < 0 && sum > m.units) {
		return Money{}, fmt.Errorf("money: add %s + %s: %w", m, other, ErrOutOfRange)
	}
	return Money{units: sum}, nil
}

// Sub returns m - other, or ErrOutOfRange on int64 overflow.
func (m Money) Sub(other Money) (Money, error) {
	diff := m.units - other.units
	if (other.units < 0 && diff < m.units) || (other.units > 0 && diff > m.units) {
		return Money{}, fmt.Errorf("money: sub %s - %s: %w", m, other, ErrOutOfRange)
	}
	return Money{units: diff}, nil
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, 1 if m > other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.units < other.units:
		return -1
	case m.units > other.units:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.units == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.units < 0 }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.units > 0 }

// String renders the amount with the fixed scale, e.g. "1234.50".
func (m Money) String() string {
	return decimal.New(m.units, -Scale).StringFixed(Scale)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON decodes either a quoted decimal string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := FromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
