package output

import (
	"fmt"

	"github.com/rpgo/buyhold/internal/domain"
)

// StaticAssumptions lists the modeling rules that hold for every batch.
var StaticAssumptions = []string{
	"Withdrawals are taken at the start of each year, before that year's market return",
	"The withdrawal is fixed in start-year dollars and inflated by CPI each year",
	"Market growth is the index price change only (no dividends, taxes or fees)",
	"A withdrawal that leaves nothing to invest ends the run",
}

// GenerateAssumptions creates the assumptions list from the batch configuration.
func GenerateAssumptions(results *domain.BatchResult) []string {
	cfg := results.Config
	series := results.Series
	name := series.Name
	if name == "" {
		name = "historical index"
	}
	out := []string{
		fmt.Sprintf("Starting principal: %s", FormatCurrency(cfg.StartingPrincipal)),
		fmt.Sprintf("Spending: %s of the starting principal (%s a year in start-year dollars)",
			FormatPercentage(cfg.SpendingPercentage), FormatCurrency(cfg.RealWithdrawal())),
		fmt.Sprintf("Horizon: %d years", cfg.NumYears),
		fmt.Sprintf("Market data: %s, simulatable years %d-%d", name, series.FirstYear, series.LastYear),
	}
	return append(out, StaticAssumptions...)
}
