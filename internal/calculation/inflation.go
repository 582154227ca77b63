package calculation

import (
	"github.com/shopspring/decimal"
)

// RealToNominal converts an amount expressed in baseYear purchasing power into
// targetYear dollars: amount * cpi(target) / cpi(base).
func RealToNominal(amount decimal.Decimal, baseYear, targetYear int, series *ReturnSeries) (decimal.Decimal, error) {
	factor, err := cpiFactor(baseYear, targetYear, series)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(factor), nil
}

// NominalToReal converts targetYear dollars back into baseYear purchasing power.
func NominalToReal(amount decimal.Decimal, baseYear, targetYear int, series *ReturnSeries) (decimal.Decimal, error) {
	factor, err := cpiFactor(baseYear, targetYear, series)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(factor), nil
}

// CumulativeInflation returns the fractional price level change between two years
// (0.25 means prices rose 25%).
func CumulativeInflation(baseYear, targetYear int, series *ReturnSeries) (decimal.Decimal, error) {
	factor, err := cpiFactor(baseYear, targetYear, series)
	if err != nil {
		return decimal.Zero, err
	}
	return factor.Sub(decimal.NewFromInt(1)), nil
}

func cpiFactor(baseYear, targetYear int, series *ReturnSeries) (decimal.Decimal, error) {
	base, err := series.CPI(baseYear)
	if err != nil {
		return decimal.Zero, err
	}
	target, err := series.CPI(targetYear)
	if err != nil {
		return decimal.Zero, err
	}
	if baseYear == targetYear {
		return decimal.NewFromInt(1), nil
	}
	return target.Div(base), nil
}
