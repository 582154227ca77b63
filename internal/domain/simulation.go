package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// SimulationConfig holds the parameters shared by every run of a batch.
type SimulationConfig struct {
	SpendingPercentage decimal.Decimal `json:"spending_percentage" yaml:"spending_percentage"` // 3 means 3%
	NumYears           int             `json:"num_years" yaml:"num_years"`
	StartingPrincipal  decimal.Decimal `json:"starting_principal" yaml:"starting_principal"`
}

// DefaultSimulationConfig mirrors the historical defaults of the tool: 4% of a
// million dollars over 30 years.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		SpendingPercentage: decimal.NewFromInt(4),
		NumYears:           30,
		StartingPrincipal:  decimal.NewFromInt(1_000_000),
	}
}

// Validate checks the configuration invariants. Failures wrap ErrConfig.
func (c SimulationConfig) Validate() error {
	if !c.SpendingPercentage.IsPositive() || c.SpendingPercentage.GreaterThan(hundred) {
		return fmt.Errorf("%w: spending percentage must be in (0, 100], got %s", ErrConfig, c.SpendingPercentage.String())
	}
	if c.NumYears <= 0 {
		return fmt.Errorf("%w: number of years must be positive, got %d", ErrConfig, c.NumYears)
	}
	if !c.StartingPrincipal.IsPositive() {
		return fmt.Errorf("%w: starting principal must be positive, got %s", ErrConfig, c.StartingPrincipal.String())
	}
	return nil
}

// RealWithdrawal is the constant real (start-year dollars) amount withdrawn each year.
func (c SimulationConfig) RealWithdrawal() decimal.Decimal {
	return c.SpendingPercentage.Div(hundred).Mul(c.StartingPrincipal)
}

// YearOutcome is a single simulated year of one run.
type YearOutcome struct {
	CalendarYear            int             `json:"calendar_year" yaml:"calendar_year"`
	YearIndex               int             `json:"year_index" yaml:"year_index"`
	StartBalance            decimal.Decimal `json:"start_balance" yaml:"start_balance"`
	NominalReturn           decimal.Decimal `json:"nominal_return" yaml:"nominal_return"`
	WithdrawalAmountReal    decimal.Decimal `json:"withdrawal_amount_real" yaml:"withdrawal_amount_real"`
	WithdrawalAmountNominal decimal.Decimal `json:"withdrawal_amount_nominal" yaml:"withdrawal_amount_nominal"`
	EndBalance              decimal.Decimal `json:"end_balance" yaml:"end_balance"`
	Depleted                bool            `json:"depleted" yaml:"depleted"`
}

// RunResult is the full trajectory of one start year.
type RunResult struct {
	StartYear    int             `json:"start_year" yaml:"start_year"`
	Outcomes     []YearOutcome   `json:"outcomes" yaml:"outcomes"`
	Survived     bool            `json:"survived" yaml:"survived"`
	FinalBalance decimal.Decimal `json:"final_balance" yaml:"final_balance"`

	// Derived figures, filled by the simulator so reporters never recompute them.
	FinalBalanceReal      decimal.Decimal `json:"final_balance_real" yaml:"final_balance_real"`
	CumulativeInflation   decimal.Decimal `json:"cumulative_inflation" yaml:"cumulative_inflation"` // fraction, 0.25 = 25%
	RealGainPercent       decimal.Decimal `json:"real_gain_percent" yaml:"real_gain_percent"`
	YearsLasted           int             `json:"years_lasted" yaml:"years_lasted"`
	DepletionYear         int             `json:"depletion_year,omitempty" yaml:"depletion_year,omitempty"`
	TotalWithdrawnNominal decimal.Decimal `json:"total_withdrawn_nominal" yaml:"total_withdrawn_nominal"`
}

// EndYear is the last calendar year of the requested horizon.
func (r RunResult) EndYear(numYears int) int {
	return r.StartYear + numYears - 1
}

// PercentileRanges represents percentile ranges of real final balances across a batch.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10" yaml:"p10"`
	P25 decimal.Decimal `json:"p25" yaml:"p25"`
	P50 decimal.Decimal `json:"p50" yaml:"p50"`
	P75 decimal.Decimal `json:"p75" yaml:"p75"`
	P90 decimal.Decimal `json:"p90" yaml:"p90"`
}

// BatchSummary aggregates the outcome distribution of a batch.
type BatchSummary struct {
	NumRuns           int              `json:"num_runs" yaml:"num_runs"`
	NumSurvived       int              `json:"num_survived" yaml:"num_survived"`
	SuccessRate       decimal.Decimal  `json:"success_rate" yaml:"success_rate"` // fraction of surviving runs
	FinalBalanceReal  PercentileRanges `json:"final_balance_real" yaml:"final_balance_real"`
	MedianYearsLasted int              `json:"median_years_lasted" yaml:"median_years_lasted"`
	BestStartYear     int              `json:"best_start_year" yaml:"best_start_year"`
	WorstStartYear    int              `json:"worst_start_year" yaml:"worst_start_year"`
}

// BatchResult is everything the harness hands to reporters.
type BatchResult struct {
	Config  SimulationConfig `json:"config" yaml:"config"`
	Series  SeriesInfo       `json:"series" yaml:"series"`
	Runs    []RunResult      `json:"runs" yaml:"runs"`
	Summary BatchSummary     `json:"summary" yaml:"summary"`
}
