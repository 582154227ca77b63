package domain

import (
	"github.com/shopspring/decimal"
)

// YearlyMarketRecord is one year of the historical index and CPI table.
//
// IndexValue is the index level at the start of the year. Close is the optional year-end
// level; when absent the next record's IndexValue closes the year.
type YearlyMarketRecord struct {
	Year       int             `json:"year" yaml:"year"`
	IndexValue decimal.Decimal `json:"index_value" yaml:"index_value"`
	CPI        decimal.Decimal `json:"cpi" yaml:"cpi"`
	Close      decimal.Decimal `json:"close,omitempty" yaml:"close,omitempty"`
}

// HasClose reports whether the record carries an explicit year-end level.
func (r YearlyMarketRecord) HasClose() bool {
	return r.Close.IsPositive()
}

// SeriesInfo describes the loaded series for reports.
type SeriesInfo struct {
	Name      string `json:"name" yaml:"name"`
	Source    string `json:"source" yaml:"source"`
	FirstYear int    `json:"first_year" yaml:"first_year"`
	LastYear  int    `json:"last_year" yaml:"last_year"` // last simulatable year
	Records   int    `json:"records" yaml:"records"`
}
