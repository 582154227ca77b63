package calculation

import (
	"math"
	"sort"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize aggregates a batch of runs: survival count and rate, percentiles of the real
// final balance, the median number of funded years and the best and worst start years.
func Summarize(runs []domain.RunResult) domain.BatchSummary {
	if len(runs) == 0 {
		return domain.BatchSummary{}
	}

	survived := 0
	balances := make([]decimal.Decimal, len(runs))
	lasted := make([]int, len(runs))
	for i, r := range runs {
		if r.Survived {
			survived++
		}
		balances[i] = r.FinalBalanceReal
		lasted[i] = r.YearsLasted
	}
	sort.Ints(lasted)

	best, worst := runs[0], runs[0]
	for _, r := range runs[1:] {
		if outranks(r, best) {
			best = r
		}
		if outranks(worst, r) {
			worst = r
		}
	}

	return domain.BatchSummary{
		NumRuns:           len(runs),
		NumSurvived:       survived,
		SuccessRate:       decimal.NewFromInt(int64(survived)).Div(decimal.NewFromInt(int64(len(runs)))),
		FinalBalanceReal:  percentileRanges(balances),
		MedianYearsLasted: lasted[len(lasted)/2],
		BestStartYear:     best.StartYear,
		WorstStartYear:    worst.StartYear,
	}
}

// outranks orders runs by funded years, then by real final balance. Ties keep the earlier run.
func outranks(a, b domain.RunResult) bool {
	if a.YearsLasted != b.YearsLasted {
		return a.YearsLasted > b.YearsLasted
	}
	return a.FinalBalanceReal.GreaterThan(b.FinalBalanceReal)
}

// percentileRanges calculates nearest-rank percentiles; values is sorted in place.
func percentileRanges(values []decimal.Decimal) domain.PercentileRanges {
	n := len(values)
	if n == 0 {
		return domain.PercentileRanges{}
	}
	sortDecimals(values)
	return domain.PercentileRanges{
		P10: values[n/10],
		P25: values[n/4],
		P50: values[n/2],
		P75: values[3*n/4],
		P90: values[9*n/10],
	}
}

func sortDecimals(values []decimal.Decimal) {
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
}

// DistributionStats provides a statistical summary of a yearly value.
type DistributionStats struct {
	Mean   decimal.Decimal `json:"mean" yaml:"mean"`
	Median decimal.Decimal `json:"median" yaml:"median"`
	StdDev decimal.Decimal `json:"std_dev" yaml:"std_dev"`
	Min    decimal.Decimal `json:"min" yaml:"min"`
	Max    decimal.Decimal `json:"max" yaml:"max"`
	Count  int             `json:"count" yaml:"count"`
}

// SeriesStatistics summarises the annual nominal returns and CPI inflation of a series.
type SeriesStatistics struct {
	Info      domain.SeriesInfo `json:"info" yaml:"info"`
	Returns   DistributionStats `json:"returns" yaml:"returns"`
	Inflation DistributionStats `json:"inflation" yaml:"inflation"`
}

// Statistics computes return and inflation statistics over the simulatable years.
func (s *ReturnSeries) Statistics() SeriesStatistics {
	var returns, inflation []decimal.Decimal
	for y := s.FirstYear(); y <= s.LastYear(); y++ {
		if r, err := s.NominalReturn(y); err == nil {
			returns = append(returns, r)
		}
		if i, err := s.InflationRate(y); err == nil {
			inflation = append(inflation, i)
		}
	}
	return SeriesStatistics{
		Info:      s.Info(),
		Returns:   calculateStatistics(returns),
		Inflation: calculateStatistics(inflation),
	}
}

// calculateStatistics calculates statistical measures for a set of values.
func calculateStatistics(values []decimal.Decimal) DistributionStats {
	if len(values) == 0 {
		return DistributionStats{}
	}

	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sortDecimals(sorted)

	sum := decimal.Zero
	for _, v := range sorted {
		sum = sum.Add(v)
	}
	count := decimal.NewFromInt(int64(len(sorted)))
	mean := sum.Div(count)

	var varianceSum decimal.Decimal
	for _, v := range sorted {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	// Convert to float for sqrt calculation
	variance, _ := varianceSum.Div(count).Float64()
	stdDev := decimal.NewFromFloat(math.Sqrt(variance))

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
	}

	return DistributionStats{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Count:  n,
	}
}
