package output

import (
	"fmt"

	"github.com/rpgo/buyhold/internal/domain"
)

// SummaryRow is the one-line outcome of a run as shown in summaries.
type SummaryRow struct {
	Years      string // "1990 - 2020"
	EndReal    string
	EndNominal string
	Gain       string
	Inflation  string
	Survived   bool
}

// SummaryHeader names the columns of a SummaryRow.
var SummaryHeader = []string{"Years", "End value (real)", "End value (nominal)", "Gain", "Inflation"}

// SummarizeRun builds the summary row for one run. A depleted run reports the year the
// money ran short in place of the end values.
func SummarizeRun(r domain.RunResult, numYears int) SummaryRow {
	row := SummaryRow{
		Years:    fmt.Sprintf("%d - %d", r.StartYear, r.StartYear+numYears),
		Survived: r.Survived,
	}
	if !r.Survived {
		row.EndReal = fmt.Sprintf("ran short in %d", r.DepletionYear)
		return row
	}
	row.EndReal = FormatWholeDollars(r.FinalBalanceReal)
	row.EndNominal = FormatWholeDollars(r.FinalBalance)
	row.Gain = FormatPercentage(r.RealGainPercent)
	row.Inflation = FormatFraction(r.CumulativeInflation)
	return row
}

// Cells returns the row in SummaryHeader order.
func (s SummaryRow) Cells() []string {
	return []string{s.Years, s.EndReal, s.EndNominal, s.Gain, s.Inflation}
}

// SummaryTable returns the header followed by one row per run.
func SummaryTable(results *domain.BatchResult) [][]string {
	table := [][]string{SummaryHeader}
	for _, r := range results.Runs {
		table = append(table, SummarizeRun(r, results.Config.NumYears).Cells())
	}
	return table
}

// StatisticsLines renders the batch summary as short labelled lines.
func StatisticsLines(results *domain.BatchResult) []string {
	s := results.Summary
	p := s.FinalBalanceReal
	return []string{
		fmt.Sprintf("Success rate: %s (%d of %d start years)", FormatFraction(s.SuccessRate), s.NumSurvived, s.NumRuns),
		fmt.Sprintf("Median years funded: %d", s.MedianYearsLasted),
		fmt.Sprintf("Real end value P10/P25/P50/P75/P90: %s / %s / %s / %s / %s",
			FormatWholeDollars(p.P10), FormatWholeDollars(p.P25), FormatWholeDollars(p.P50), FormatWholeDollars(p.P75), FormatWholeDollars(p.P90)),
		fmt.Sprintf("Best start year: %d", s.BestStartYear),
		fmt.Sprintf("Worst start year: %d", s.WorstStartYear),
	}
}
