package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpgo/buyhold/internal/calculation"
	"github.com/rpgo/buyhold/internal/domain"
)

// PrefixFileWriter dumps a batch as tab-delimited tables whose names share a prefix:
// <prefix>_for_year_<Y>.csv per run, plus _summary, _inflation and _prices tables.
type PrefixFileWriter struct {
	Prefix string
}

// NewPrefixFileWriter creates a writer for prefix, which may include a directory.
func NewPrefixFileWriter(prefix string) *PrefixFileWriter {
	return &PrefixFileWriter{Prefix: prefix}
}

// WriteAll writes every table and returns the paths written.
func (p *PrefixFileWriter) WriteAll(results *domain.BatchResult, series *calculation.ReturnSeries) ([]string, error) {
	if dir := filepath.Dir(p.Prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var written []string
	for _, run := range results.Runs {
		path, err := p.WriteRun(run)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	steps := []func() (string, error){
		func() (string, error) { return p.WriteSummary(results) },
		func() (string, error) { return p.WriteInflation(series) },
		func() (string, error) { return p.WritePrices(series) },
	}
	for _, step := range steps {
		path, err := step()
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteRun writes the yearly table of one run.
func (p *PrefixFileWriter) WriteRun(run domain.RunResult) (string, error) {
	rows := [][]string{{
		"year",
		"start net worth (nominal)",
		"withdrawal (nominal)",
		"withdrawal (real)",
		"return %",
		"end net worth (nominal)",
		"depleted",
	}}
	for _, o := range run.Outcomes {
		rows = append(rows, []string{
			intToString(o.CalendarYear),
			FormatCurrency(o.StartBalance),
			FormatCurrency(o.WithdrawalAmountNominal),
			FormatCurrency(o.WithdrawalAmountReal),
			FormatFraction(o.NominalReturn),
			FormatCurrency(o.EndBalance),
			boolToString(o.Depleted),
		})
	}
	path := fmt.Sprintf("%s_for_year_%d.csv", p.Prefix, run.StartYear)
	return path, writeTable(path, rows)
}

// WriteSummary writes one summary row per run.
func (p *PrefixFileWriter) WriteSummary(results *domain.BatchResult) (string, error) {
	path := p.Prefix + "_summary.csv"
	return path, writeTable(path, SummaryTable(results))
}

// WriteInflation writes the yearly CPI inflation of the series.
func (p *PrefixFileWriter) WriteInflation(series *calculation.ReturnSeries) (string, error) {
	rows := [][]string{{"Year", "Inflation %"}}
	for _, r := range series.Records() {
		rate, err := series.InflationRate(r.Year)
		if err != nil {
			continue // last year has no following CPI
		}
		rows = append(rows, []string{intToString(r.Year), FormatFraction(rate)})
	}
	path := p.Prefix + "_inflation.csv"
	return path, writeTable(path, rows)
}

// WritePrices writes the yearly index levels of the series.
func (p *PrefixFileWriter) WritePrices(series *calculation.ReturnSeries) (string, error) {
	rows := [][]string{{"Year", "Open", "Close", "CPI"}}
	for _, r := range series.Records() {
		closeValue := ""
		if r.HasClose() {
			closeValue = r.Close.String()
		}
		rows = append(rows, []string{intToString(r.Year), r.IndexValue.String(), closeValue, r.CPI.String()})
	}
	path := p.Prefix + "_prices.csv"
	return path, writeTable(path, rows)
}

func writeTable(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
