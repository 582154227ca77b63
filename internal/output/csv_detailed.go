package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/buyhold/internal/domain"
)

// CSVDetailedExporter provides raw yearly outcomes per start year.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(results *domain.BatchResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"StartYear", "YearIndex", "CalendarYear", "StartBalance", "NominalReturn", "WithdrawalReal", "WithdrawalNominal", "EndBalance", "Depleted"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range results.Runs {
		for _, o := range r.Outcomes {
			row := []string{
				intToString(r.StartYear),
				intToString(o.YearIndex),
				intToString(o.CalendarYear),
				o.StartBalance.StringFixed(2),
				o.NominalReturn.StringFixed(6),
				o.WithdrawalAmountReal.StringFixed(2),
				o.WithdrawalAmountNominal.StringFixed(2),
				o.EndBalance.StringFixed(2),
				boolToString(o.Depleted),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
