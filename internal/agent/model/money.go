package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in integer cents. Sums and differences of Money values
// are exact.
type Money int64

// Cents rounds a decimal amount to the nearest cent.
func Cents(v float64) Money {
	return Money(math.Round(v * 100))
}

// Float64 returns the amount in currency units.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimals, e.g. "9.04".
func (m Money) String() string {
	sign := ""
	c := int64(m)
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON writes a JSON number with exactly two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("money %q: %w", s, err)
	}
	*m = Cents(f)
	return nil
}
