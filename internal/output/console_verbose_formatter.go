package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/buyhold/internal/domain"
)

// ConsoleVerboseFormatter renders the per-year breakdown of every run.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(results *domain.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "BUY-AND-HOLD FIXED REAL WITHDRAWAL ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range GenerateAssumptions(results) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	for _, run := range results.Runs {
		writeRunBreakdown(&buf, run, results.Config.NumYears)
	}

	fmt.Fprintln(&buf, "SUMMARY")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	for _, row := range SummaryTable(results) {
		writeSummaryLine(&buf, row)
	}
	if len(results.Runs) > 0 {
		fmt.Fprintln(&buf)
		for _, line := range StatisticsLines(results) {
			fmt.Fprintln(&buf, line)
		}
	}

	return buf.Bytes(), nil
}

// writeRunBreakdown prints one run's yearly table followed by its outcome.
func writeRunBreakdown(buf *bytes.Buffer, run domain.RunResult, numYears int) {
	title := fmt.Sprintf("START YEAR %d (%d - %d)", run.StartYear, run.StartYear, run.EndYear(numYears))
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, strings.Repeat("-", len(title)))
	fmt.Fprintf(buf, "%-6s %18s %16s %16s %9s %18s\n", "YEAR", "START BALANCE", "WITHDRAWAL", "(REAL)", "RETURN", "END BALANCE")
	for _, o := range run.Outcomes {
		end := FormatCurrency(o.EndBalance)
		if o.Depleted {
			end = "DEPLETED"
		}
		fmt.Fprintf(buf, "%-6d %18s %16s %16s %9s %18s\n",
			o.CalendarYear,
			FormatCurrency(o.StartBalance),
			FormatCurrency(o.WithdrawalAmountNominal),
			FormatCurrency(o.WithdrawalAmountReal),
			FormatFraction(o.NominalReturn),
			end,
		)
	}

	if run.Survived {
		fmt.Fprintf(buf, "Survived: %s nominal, %s in start-year dollars (%s), inflation %s\n",
			FormatCurrency(run.FinalBalance), FormatCurrency(run.FinalBalanceReal),
			FormatPercentage(run.RealGainPercent), FormatFraction(run.CumulativeInflation))
	} else {
		fmt.Fprintf(buf, "Ran short in %d after %d funded years\n", run.DepletionYear, run.YearsLasted)
	}
	fmt.Fprintf(buf, "Total withdrawn (nominal): %s\n", FormatCurrency(run.TotalWithdrawnNominal))
	fmt.Fprintln(buf)
}
