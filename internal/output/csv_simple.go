package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/buyhold/internal/domain"
)

// CSVSummarizer implements the simple summary CSV output (one row per start year).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(results *domain.BatchResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"StartYear", "EndYear", "Survived", "YearsLasted", "DepletionYear", "FinalBalance", "FinalBalanceReal", "RealGainPercent", "CumulativeInflationPercent", "TotalWithdrawnNominal"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results.Runs {
		depletion := ""
		if r.DepletionYear != 0 {
			depletion = intToString(r.DepletionYear)
		}
		row := []string{
			intToString(r.StartYear),
			intToString(r.EndYear(results.Config.NumYears)),
			boolToString(r.Survived),
			intToString(r.YearsLasted),
			depletion,
			r.FinalBalance.StringFixed(2),
			r.FinalBalanceReal.StringFixed(2),
			r.RealGainPercent.StringFixed(2),
			r.CumulativeInflation.Mul(decimalHundred).StringFixed(2),
			r.TotalWithdrawnNominal.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
