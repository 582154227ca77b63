package output

import (
	"errors"
	"strconv"

	moneyfmt "github.com/rpgo/buyhold/pkg/decimal"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedFormat is returned when a report format name matches no formatter.
var ErrUnsupportedFormat = errors.New("unsupported report format")

var decimalHundred = decimal.NewFromInt(100)

// FormatCurrency formats a decimal as USD currency with cents, e.g. "$1,037,900.00".
func FormatCurrency(amount decimal.Decimal) string {
	return moneyfmt.NewMoneyFromDecimal(amount).Format()
}

// FormatWholeDollars formats a decimal as USD currency rounded to whole dollars.
func FormatWholeDollars(amount decimal.Decimal) string {
	return moneyfmt.NewMoneyFromDecimal(amount).FormatWhole()
}

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatFraction formats a fraction (0.25) as a percentage ("25.00%").
func FormatFraction(fraction decimal.Decimal) string {
	return FormatPercentage(fraction.Mul(decimalHundred))
}

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
