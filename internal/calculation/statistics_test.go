package calculation

import (
	"testing"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runResult(start int, survived bool, lasted int, realFinal int64) domain.RunResult {
	return domain.RunResult{
		StartYear:        start,
		Survived:         survived,
		YearsLasted:      lasted,
		FinalBalanceReal: decimal.NewFromInt(realFinal),
	}
}

func TestSummarize(t *testing.T) {
	runs := []domain.RunResult{
		runResult(1960, true, 10, 500),
		runResult(1961, false, 7, 0),
		runResult(1962, true, 10, 900),
		runResult(1963, true, 10, 100),
		runResult(1964, false, 4, 0),
		runResult(1965, true, 10, 900),
		runResult(1966, true, 10, 300),
		runResult(1967, true, 10, 200),
		runResult(1968, true, 10, 700),
		runResult(1969, false, 9, 0),
	}

	s := Summarize(runs)
	assert.Equal(t, 10, s.NumRuns)
	assert.Equal(t, 7, s.NumSurvived)
	assert.Equal(t, "0.7", s.SuccessRate.String())
	assert.Equal(t, 10, s.MedianYearsLasted)
	assert.Equal(t, 1962, s.BestStartYear, "ties keep the earlier start year")
	assert.Equal(t, 1964, s.WorstStartYear)

	// Sorted: 0 0 0 100 200 300 500 700 900 900
	assert.Equal(t, "0", s.FinalBalanceReal.P10.String())
	assert.Equal(t, "0", s.FinalBalanceReal.P25.String())
	assert.Equal(t, "300", s.FinalBalanceReal.P50.String())
	assert.Equal(t, "700", s.FinalBalanceReal.P75.String())
	assert.Equal(t, "900", s.FinalBalanceReal.P90.String())

	// Inputs are left untouched.
	assert.Equal(t, 1960, runs[0].StartYear)
	assert.Equal(t, "500", runs[0].FinalBalanceReal.String())
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, domain.BatchSummary{}, Summarize(nil))
}

func TestSeriesStatistics(t *testing.T) {
	// Returns 10%, -10%, 20%, 0%; CPI rising 100 -> 102 -> 104.04 -> 106.1208.
	s := mustSeries(t, []domain.YearlyMarketRecord{
		{Year: 2000, IndexValue: decimal.NewFromInt(100), CPI: decimal.RequireFromString("100"), Close: decimal.NewFromInt(110)},
		{Year: 2001, IndexValue: decimal.NewFromInt(110), CPI: decimal.RequireFromString("102"), Close: decimal.NewFromInt(99)},
		{Year: 2002, IndexValue: decimal.NewFromInt(100), CPI: decimal.RequireFromString("104.04"), Close: decimal.NewFromInt(120)},
		{Year: 2003, IndexValue: decimal.NewFromInt(120), CPI: decimal.RequireFromString("106.1208"), Close: decimal.NewFromInt(120)},
	})

	stats := s.Statistics()
	assert.Equal(t, s.Info(), stats.Info)

	require.Equal(t, 4, stats.Returns.Count)
	assert.Equal(t, "0.05", stats.Returns.Mean.String())
	assert.Equal(t, "0.05", stats.Returns.Median.String())
	assert.Equal(t, "-0.1", stats.Returns.Min.String())
	assert.Equal(t, "0.2", stats.Returns.Max.String())
	std, _ := stats.Returns.StdDev.Float64()
	assert.InDelta(t, 0.1118, std, 0.0001)

	// 2003 has no following CPI, so three inflation observations.
	require.Equal(t, 3, stats.Inflation.Count)
	assert.Equal(t, "0.02", stats.Inflation.Median.String())
	assert.Equal(t, "0.02", stats.Inflation.Min.String())
	assert.Equal(t, "0.02", stats.Inflation.Max.String())
	assert.True(t, stats.Inflation.StdDev.IsZero())
}
