package decimal

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// usd drives currency text; balances in the simulator are always US dollars.
var usd = money.GetCurrency(money.USD)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// NewMoneyFromString creates a new Money instance from a string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// Round rounds the money amount to cents, half away from zero.
func (m Money) Round() Money {
	return Money{m.Decimal.Round(int32(usd.Fraction))}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Equal checks if this amount equals another
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// String returns the plain amount with two decimals, as written to data files.
func (m Money) String() string {
	return m.Decimal.StringFixed(int32(usd.Fraction))
}

// Format returns currency text with grouping and cents, e.g. "$1,037,900.00".
func (m Money) Format() string {
	minor := m.Round().Shift(int32(usd.Fraction))
	return usd.Formatter().Format(minor.IntPart())
}

// FormatWhole returns currency text rounded to whole dollars, e.g. "$1,037,900".
func (m Money) FormatWhole() string {
	f := usd.Formatter()
	f.Fraction = 0
	return f.Format(m.Decimal.Round(0).IntPart())
}
