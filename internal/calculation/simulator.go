package calculation

import (
	"fmt"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalHundred = decimal.NewFromInt(100)
)

// Simulator runs the fixed-real-withdrawal buy-and-hold strategy for one start year.
type Simulator struct {
	Series *ReturnSeries
	Logger Logger
}

// NewSimulator creates a simulator reading from series.
func NewSimulator(series *ReturnSeries) *Simulator {
	return &Simulator{
		Series: series,
		Logger: NopLogger{},
	}
}

// SetLogger sets the logger for the simulator. If nil is provided, a no-op logger is used.
func (s *Simulator) SetLogger(l Logger) {
	if l == nil {
		s.Logger = NopLogger{}
		return
	}
	s.Logger = l
}

// Run simulates cfg.NumYears years starting at startYear.
//
// Each year the constant real withdrawal is converted to that year's dollars and taken at
// the start of the year; the remainder then grows by the year's nominal index return. A
// withdrawal that leaves zero or less ends the run with a depleted outcome. Asking for a
// window outside the series is a caller error and wraps domain.ErrData.
func (s *Simulator) Run(startYear int, cfg domain.SimulationConfig) (domain.RunResult, error) {
	if s.Series == nil {
		return domain.RunResult{}, fmt.Errorf("%w: historical series not loaded", domain.ErrData)
	}
	if err := cfg.Validate(); err != nil {
		return domain.RunResult{}, err
	}
	endYear := startYear + cfg.NumYears - 1
	if !s.Series.IsEligible(startYear, cfg.NumYears) {
		return domain.RunResult{}, fmt.Errorf("%w: window %d-%d is outside simulatable years %d-%d",
			domain.ErrData, startYear, endYear, s.Series.FirstYear(), s.Series.LastYear())
	}

	s.logger().Debugf("Simulating %d - %d", startYear, startYear+cfg.NumYears)

	realWithdrawal := cfg.RealWithdrawal()
	balance := cfg.StartingPrincipal
	totalWithdrawn := decimal.Zero
	outcomes := make([]domain.YearOutcome, 0, cfg.NumYears)
	depletionYear := 0

	for i := 0; i < cfg.NumYears; i++ {
		year := startYear + i

		nominalWithdrawal, err := RealToNominal(realWithdrawal, startYear, year, s.Series)
		if err != nil {
			return domain.RunResult{}, err
		}
		nominalReturn, err := s.Series.NominalReturn(year)
		if err != nil {
			return domain.RunResult{}, err
		}

		outcome := domain.YearOutcome{
			CalendarYear:            year,
			YearIndex:               i,
			StartBalance:            balance,
			NominalReturn:           nominalReturn,
			WithdrawalAmountReal:    realWithdrawal,
			WithdrawalAmountNominal: nominalWithdrawal,
		}

		balance = balance.Sub(nominalWithdrawal)
		if !balance.IsPositive() {
			// Terminal: whatever was left is spent and the run stops here.
			totalWithdrawn = totalWithdrawn.Add(outcome.StartBalance)
			balance = decimal.Zero
			outcome.EndBalance = decimal.Zero
			outcome.Depleted = true
			outcomes = append(outcomes, outcome)
			depletionYear = year
			s.logger().Debugf("\tran short in %d (needed %s, had %s)", year, nominalWithdrawal.StringFixed(2), outcome.StartBalance.StringFixed(2))
			break
		}
		totalWithdrawn = totalWithdrawn.Add(nominalWithdrawal)

		balance = balance.Mul(decimalOne.Add(nominalReturn))
		outcome.EndBalance = balance
		outcomes = append(outcomes, outcome)
	}

	result := domain.RunResult{
		StartYear:             startYear,
		Outcomes:              outcomes,
		Survived:              depletionYear == 0 && len(outcomes) == cfg.NumYears,
		FinalBalance:          balance,
		DepletionYear:         depletionYear,
		YearsLasted:           len(outcomes),
		TotalWithdrawnNominal: totalWithdrawn,
	}
	if depletionYear != 0 {
		result.YearsLasted--
	}

	priceYear := s.priceLevelYear(endYear)
	inflation, err := CumulativeInflation(startYear, priceYear, s.Series)
	if err != nil {
		return domain.RunResult{}, err
	}
	realFinal, err := NominalToReal(result.FinalBalance, startYear, priceYear, s.Series)
	if err != nil {
		return domain.RunResult{}, err
	}
	result.CumulativeInflation = inflation
	result.FinalBalanceReal = realFinal
	result.RealGainPercent = realFinal.Sub(cfg.StartingPrincipal).Mul(decimalHundred).Div(cfg.StartingPrincipal)

	return result, nil
}

// priceLevelYear picks the CPI year that best matches end-of-year dollars for endYear:
// the following year's start-of-year level when recorded, else endYear itself.
func (s *Simulator) priceLevelYear(endYear int) int {
	if _, err := s.Series.Lookup(endYear + 1); err == nil {
		return endYear + 1
	}
	return endYear
}

func (s *Simulator) logger() Logger {
	if s.Logger == nil {
		return NopLogger{}
	}
	return s.Logger
}
