package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/buyhold/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface:
// one line per start year.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(results *domain.BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "BUY-AND-HOLD SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Spending %s of %s for %d years\n",
		FormatPercentage(results.Config.SpendingPercentage), FormatCurrency(results.Config.StartingPrincipal), results.Config.NumYears)
	fmt.Fprintln(&buf)

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

func writeSummaryLine(buf *bytes.Buffer, cells []string) {
	line := fmt.Sprintf("%-13s  %-20s  %19s  %10s  %9s", cells[0], cells[1], cells[2], cells[3], cells[4])
	fmt.Fprintln(buf, strings.TrimRight(line, " "))
}
