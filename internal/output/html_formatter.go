package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"

	"github.com/rpgo/buyhold/internal/domain"
)

// HTMLFormatter produces a standalone HTML report with a balance chart per start year.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":     FormatCurrency,
	"whole":    FormatWholeDollars,
	"pct":      FormatPercentage,
	"fraction": FormatFraction,
	"summary":  SummarizeRun,
	"json": func(v interface{}) template.JS {
		b, _ := json.Marshal(v)
		return template.JS(b)
	},
}).Parse(htmlTemplateSource))

// chartSeries is the per-run data handed to the page script.
type chartSeries struct {
	StartYear int       `json:"start_year"`
	Years     []int     `json:"years"`
	Balances  []float64 `json:"balances"`
}

func (h HTMLFormatter) Format(results *domain.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	charts := make([]chartSeries, 0, len(results.Runs))
	for _, r := range results.Runs {
		cs := chartSeries{StartYear: r.StartYear}
		for _, o := range r.Outcomes {
			cs.Years = append(cs.Years, o.CalendarYear)
			cs.Balances = append(cs.Balances, o.EndBalance.InexactFloat64())
		}
		charts = append(charts, cs)
	}

	data := struct {
		*domain.BatchResult
		Assumptions []string
		Statistics  []string
		Charts      []chartSeries
	}{results, GenerateAssumptions(results), StatisticsLines(results), charts}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
