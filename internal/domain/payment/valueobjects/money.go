package valueobjects

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used when a request omits the currency.
const DefaultCurrency = "CNY"

// MaxMinorDigits matches the scale of the stored amount columns.
const MaxMinorDigits = 2

var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrAmountPrecision  = errors.New("amount has more decimal places than the currency allows")

	// ErrUnsupportedCurrency rejects currencies whose minor unit exceeds MaxMinorDigits.
	ErrUnsupportedCurrency = errors.New("currency minor unit is not supported")
)

// Money is an exact, non-negative decimal amount in major units (yuan for CNY).
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney validates the currency against ISO 4217 and the amount against the
// currency's minor unit.
func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	scale, _ := currency.Standard.Rounding(unit)
	if scale > MaxMinorDigits {
		return Money{}, fmt.Errorf("%w: %s uses %d decimal places", ErrUnsupportedCurrency, unit.String(), scale)
	}
	if !amount.Equal(amount.Round(int32(scale))) {
		return Money{}, fmt.Errorf("%w: %s %s", ErrAmountPrecision, amount.String(), unit.String())
	}

	return Money{
		amount:   amount,
		currency: unit.String(),
	}, nil
}

// ParseMoney parses a decimal string such as "100.00".
func ParseMoney(amount, code string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, code)
}

// MustParseMoney panics on invalid input. Intended for tests and constants.
func MustParseMoney(amount, code string) Money {
	m, err := ParseMoney(amount, code)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(code string) Money {
	m, err := NewMoney(decimal.Zero, code)
	if err != nil {
		return Money{amount: decimal.Zero, currency: DefaultCurrency}
	}
	return m
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub fails instead of producing a negative amount.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	result := m.amount.Sub(other.amount)
	if result.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	return Money{amount: result, currency: m.currency}, nil
}

// Cmp returns -1, 0 or 1. Amounts in different currencies are not comparable.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// Equals compares value and currency; "100" equals "100.00".
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// ProviderString formats the amount with two decimals as the provider API expects.
func (m Money) ProviderString() string {
	return m.amount.StringFixed(2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
