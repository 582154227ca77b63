package calculation

import (
	"fmt"
	"sort"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/shopspring/decimal"
)

// ReturnSeries is an immutable, contiguous table of yearly index and CPI values.
// It is safe for concurrent use by any number of simulations.
type ReturnSeries struct {
	Name   string
	Source string

	records  []domain.YearlyMarketRecord
	index    map[int]int
	lastYear int // last year with a computable return
}

// NewReturnSeries validates records and builds a series from them. The input slice is
// copied and sorted; the caller keeps ownership of it.
func NewReturnSeries(records []domain.YearlyMarketRecord) (*ReturnSeries, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: historical series is empty", domain.ErrData)
	}

	sorted := make([]domain.YearlyMarketRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	index := make(map[int]int, len(sorted))
	for i, r := range sorted {
		if i > 0 {
			prev := sorted[i-1].Year
			if r.Year == prev {
				return nil, fmt.Errorf("%w: duplicate year %d", domain.ErrData, r.Year)
			}
			if r.Year != prev+1 {
				return nil, fmt.Errorf("%w: gap in series between %d and %d", domain.ErrData, prev, r.Year)
			}
		}
		if !r.IndexValue.IsPositive() {
			return nil, fmt.Errorf("%w: index value for %d must be positive, got %s", domain.ErrData, r.Year, r.IndexValue.String())
		}
		if !r.CPI.IsPositive() {
			return nil, fmt.Errorf("%w: CPI for %d must be positive, got %s", domain.ErrData, r.Year, r.CPI.String())
		}
		if r.Close.IsNegative() {
			return nil, fmt.Errorf("%w: close for %d cannot be negative, got %s", domain.ErrData, r.Year, r.Close.String())
		}
		index[r.Year] = i
	}

	last := sorted[len(sorted)-1]
	lastYear := last.Year
	if !last.HasClose() {
		// The final record only closes the year before it.
		lastYear--
	}

	return &ReturnSeries{
		records:  sorted,
		index:    index,
		lastYear: lastYear,
	}, nil
}

// Records returns a copy of the records in ascending year order.
func (s *ReturnSeries) Records() []domain.YearlyMarketRecord {
	out := make([]domain.YearlyMarketRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records, including a trailing boundary record.
func (s *ReturnSeries) Len() int { return len(s.records) }

// FirstYear returns the first recorded year.
func (s *ReturnSeries) FirstYear() int { return s.records[0].Year }

// LastYear returns the last year that can be simulated, i.e. the last year whose
// nominal return is known.
func (s *ReturnSeries) LastYear() int { return s.lastYear }

// SimulatableYears is the number of years a single run could span at most.
func (s *ReturnSeries) SimulatableYears() int {
	if s.lastYear < s.FirstYear() {
		return 0
	}
	return s.lastYear - s.FirstYear() + 1
}

// Lookup returns the record for year.
func (s *ReturnSeries) Lookup(year int) (domain.YearlyMarketRecord, error) {
	i, ok := s.index[year]
	if !ok {
		return domain.YearlyMarketRecord{}, fmt.Errorf("%w: no record for year %d", domain.ErrData, year)
	}
	return s.records[i], nil
}

// CPI returns the CPI value recorded for year.
func (s *ReturnSeries) CPI(year int) (decimal.Decimal, error) {
	r, err := s.Lookup(year)
	if err != nil {
		return decimal.Zero, err
	}
	return r.CPI, nil
}

// NominalReturn returns the index growth realized over calendar year, as a fraction.
func (s *ReturnSeries) NominalReturn(year int) (decimal.Decimal, error) {
	r, err := s.Lookup(year)
	if err != nil {
		return decimal.Zero, err
	}
	yearEnd := r.Close
	if !r.HasClose() {
		next, err := s.Lookup(year + 1)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: return for %d needs a close or a %d record", domain.ErrData, year, year+1)
		}
		yearEnd = next.IndexValue
	}
	return yearEnd.Div(r.IndexValue).Sub(decimal.NewFromInt(1)), nil
}

// InflationRate returns the CPI change from year to year+1, or an error when year+1 is
// not recorded.
func (s *ReturnSeries) InflationRate(year int) (decimal.Decimal, error) {
	cur, err := s.CPI(year)
	if err != nil {
		return decimal.Zero, err
	}
	next, err := s.CPI(year + 1)
	if err != nil {
		return decimal.Zero, err
	}
	return next.Div(cur).Sub(decimal.NewFromInt(1)), nil
}

// EligibleStartYears returns, in ascending order, every year Y for which a full window
// [Y, Y+numYears-1] of simulatable years exists.
func (s *ReturnSeries) EligibleStartYears(numYears int) []int {
	if numYears <= 0 {
		return nil
	}
	var years []int
	for y := s.FirstYear(); y+numYears-1 <= s.lastYear; y++ {
		years = append(years, y)
	}
	return years
}

// IsEligible reports whether a run of numYears can start at year.
func (s *ReturnSeries) IsEligible(year, numYears int) bool {
	return numYears > 0 && year >= s.FirstYear() && year+numYears-1 <= s.lastYear
}

// Info returns the series metadata used in reports.
func (s *ReturnSeries) Info() domain.SeriesInfo {
	return domain.SeriesInfo{
		Name:      s.Name,
		Source:    s.Source,
		FirstYear: s.FirstYear(),
		LastYear:  s.lastYear,
		Records:   len(s.records),
	}
}
