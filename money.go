package main

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise).
type Money int64

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)`)

// parseDecimal reads the leading number of s, ignoring whatever follows it
// ("80%" reads as 80). ok is false when s does not start with a number.
func parseDecimal(s string) (d decimal.Decimal, ok bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

func (m Money) Times(qty int) Money {
	return m * Money(qty)
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format prefixes the amount with a currency marker, e.g. "Rs. 150.00".
func (m Money) Format(currency string) string {
	if currency == "" {
		return m.String()
	}
	return currency + " " + m.String()
}
