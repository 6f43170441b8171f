package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	moneyScale = 2
	// maxMoneyDigits is the number of integer digits in maxMoney.
	maxMoneyDigits = 12
	// maxMoneyInput bounds the textual form accepted by ParseMoney.
	maxMoneyInput = 64
)

var maxMoney = decimal.RequireFromString("999999999999.99")

var (
	errMoneyPrecision = fmt.Errorf("amount has more than %d decimal places", moneyScale)
	errMoneyRange     = fmt.Errorf("amount exceeds %s", maxMoney.StringFixed(moneyScale))
)

// Money is a fixed-point amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// ParseMoney parses a decimal string such as "125" or "125.50".
// Values with more than two fractional digits or above 999999999999.99 are rejected.
func ParseMoney(s string) (Money, error) {
	if len(s) > maxMoneyInput {
		return Money{}, fmt.Errorf("amount %q... is too long", s[:16])
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("amount %q is not a number", s)
	}
	return NewMoney(d)
}

// MustParseMoney is ParseMoney that panics on error. Intended for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoney validates d as a monetary amount.
// The exponent is checked against the coefficient's digit count before any
// rescaling, so values like 1e10000000 are rejected without arithmetic.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsZero() {
		return Money{}, nil
	}
	exp := int64(d.Exponent())
	digits := int64(len(new(big.Int).Abs(d.Coefficient()).String()))
	if digits+exp > maxMoneyDigits {
		return Money{}, errMoneyRange
	}
	// A coefficient of n digits holds at most n trailing zeros.
	if -exp-moneyScale > digits {
		return Money{}, errMoneyPrecision
	}
	if !d.Equal(d.Round(moneyScale)) {
		return Money{}, errMoneyPrecision
	}
	if d.Abs().GreaterThan(maxMoney) {
		return Money{}, errMoneyRange
	}
	return Money{d: d.Round(moneyScale)}, nil
}

// ParseMoneyJSON accepts a JSON number (125.5) or a JSON string ("125.50").
func ParseMoneyJSON(raw json.RawMessage) (Money, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Money{}, errors.New("amount is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Money{}, fmt.Errorf("amount is not a valid string: %w", err)
		}
		return ParseMoney(s)
	}
	return ParseMoney(string(raw))
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) String() string { return m.d.StringFixed(moneyScale) }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	v, err := ParseMoneyJSON(b)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
