package calculation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/rpgo/buyhold/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// File names looked up inside a data directory.
const (
	YearlyFileName    = "market-yearly.csv"
	PriceFileName     = "snp_history.csv"
	InflationFileName = "inflation_history.csv"
)

// baseCPI anchors the chained CPI built from yearly inflation rates.
var baseCPI = decimal.NewFromInt(100)

// YearlyPrice is the first open and last close of a calendar year of daily prices.
type YearlyPrice struct {
	Year     int
	Open     decimal.Decimal
	Close    decimal.Decimal
	FirstDay time.Time
	LastDay  time.Time
}

// HistoricalDataManager locates and loads the historical series in a data directory.
type HistoricalDataManager struct {
	DataPath string
	Logger   Logger
}

// NewHistoricalDataManager creates a new historical data manager
func NewHistoricalDataManager(dataPath string) *HistoricalDataManager {
	return &HistoricalDataManager{
		DataPath: dataPath,
		Logger:   NopLogger{},
	}
}

// LoadSeries loads the yearly table when present, otherwise imports the raw daily price
// and monthly inflation files.
func (hdm *HistoricalDataManager) LoadSeries() (*ReturnSeries, error) {
	yearlyPath := filepath.Join(hdm.DataPath, YearlyFileName)
	if _, err := os.Stat(yearlyPath); err == nil {
		hdm.logger().Debugf("loading yearly series from %s", yearlyPath)
		return LoadYearlyCSV(yearlyPath)
	}

	records, err := hdm.ImportRaw()
	if err != nil {
		return nil, err
	}
	series, err := NewReturnSeries(records)
	if err != nil {
		return nil, err
	}
	series.Name = "S&P 500"
	series.Source = filepath.Join(hdm.DataPath, PriceFileName) + " + " + filepath.Join(hdm.DataPath, InflationFileName)
	return series, nil
}

// ImportRaw reads the raw daily price and monthly inflation files and merges them into
// yearly records.
func (hdm *HistoricalDataManager) ImportRaw() ([]domain.YearlyMarketRecord, error) {
	pricePath := filepath.Join(hdm.DataPath, PriceFileName)
	inflationPath := filepath.Join(hdm.DataPath, InflationFileName)

	prices, err := readFile(pricePath, ReadDailyPrices)
	if err != nil {
		return nil, err
	}
	inflation, err := readFile(inflationPath, ReadMonthlyInflation)
	if err != nil {
		return nil, err
	}
	hdm.logger().Debugf("imported %d price years and %d inflation years from %s", len(prices), len(inflation), hdm.DataPath)
	return BuildRecords(prices, inflation)
}

func (hdm *HistoricalDataManager) logger() Logger {
	if hdm.Logger == nil {
		return NopLogger{}
	}
	return hdm.Logger
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("%w: failed to open file %s: %v", domain.ErrData, path, err)
	}
	defer file.Close()

	v, err := read(file)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadYearlyCSV loads a series from a yearly CSV file.
func LoadYearlyCSV(path string) (*ReturnSeries, error) {
	records, err := readFile(path, ReadYearlyCSV)
	if err != nil {
		return nil, err
	}
	series, err := NewReturnSeries(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	series.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	series.Source = path
	return series, nil
}

// ReadYearlyCSV parses the yearly table: a header naming year, index_value and cpi
// columns, plus an optional close column.
func ReadYearlyCSV(r io.Reader) ([]domain.YearlyMarketRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrData, err)
	}
	yearCol := columnIndex(header, "year")
	indexCol := columnIndex(header, "index_value", "index", "open")
	cpiCol := columnIndex(header, "cpi")
	closeCol := columnIndex(header, "close")
	if yearCol < 0 || indexCol < 0 || cpiCol < 0 {
		return nil, fmt.Errorf("%w: invalid CSV format: expected year, index_value and cpi columns, got %v", domain.ErrData, header)
	}

	var records []domain.YearlyMarketRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data row %d: %v", domain.ErrData, line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(field(row, yearCol)))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid year %q", domain.ErrData, line, field(row, yearCol))
		}
		index, err := parseDecimal(field(row, indexCol))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid index value: %v", domain.ErrData, line, err)
		}
		cpi, err := parseDecimal(field(row, cpiCol))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid cpi: %v", domain.ErrData, line, err)
		}
		rec := domain.YearlyMarketRecord{Year: year, IndexValue: index, CPI: cpi}
		if closeCol >= 0 && strings.TrimSpace(field(row, closeCol)) != "" {
			closeValue, err := parseDecimal(field(row, closeCol))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid close: %v", domain.ErrData, line, err)
			}
			rec.Close = closeValue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid data points found", domain.ErrData)
	}
	return records, nil
}

// WriteYearlyCSV writes records in the format read by ReadYearlyCSV.
func WriteYearlyCSV(w io.Writer, records []domain.YearlyMarketRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"year", "index_value", "cpi", "close"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		closeValue := ""
		if r.HasClose() {
			closeValue = r.Close.String()
		}
		row := []string{strconv.Itoa(r.Year), r.IndexValue.String(), r.CPI.String(), closeValue}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write data row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadDailyPrices groups a daily price history (Date, Open, ..., Close columns) by year,
// keeping the open of the first trading day and the close of the last one. Rows with
// missing prices are skipped.
func ReadDailyPrices(r io.Reader) (map[int]YearlyPrice, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrData, err)
	}
	dateCol := columnIndex(header, "date")
	openCol := columnIndex(header, "open")
	closeCol := columnIndex(header, "close")
	if dateCol < 0 || openCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("%w: invalid CSV format: expected Date, Open and Close columns, got %v", domain.ErrData, header)
	}

	years := make(map[int]YearlyPrice)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data row %d: %v", domain.ErrData, line, err)
		}

		day, err := dateutil.ParseDay(field(row, dateCol))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", domain.ErrData, line, err)
		}
		open, errOpen := parseDecimal(field(row, openCol))
		closeValue, errClose := parseDecimal(field(row, closeCol))
		if errOpen != nil || errClose != nil {
			continue // Skip rows with missing prices
		}

		y := day.Year()
		yp, seen := years[y]
		if !seen || day.Before(yp.FirstDay) {
			yp.FirstDay = day
			yp.Open = open
		}
		if !seen || day.After(yp.LastDay) {
			yp.LastDay = day
			yp.Close = closeValue
		}
		yp.Year = y
		years[y] = yp
	}

	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no valid price rows found", domain.ErrData)
	}
	return years, nil
}

// ReadMonthlyInflation reads a Year, Jan..Dec table of monthly inflation percentages
// ("2.5%" or "2.5") and returns the average monthly rate per year as a fraction. Blank
// months are ignored, so a partial year averages only the months present.
func ReadMonthlyInflation(r io.Reader) (map[int]decimal.Decimal, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", domain.ErrData, err)
	}
	yearCol := columnIndex(header, "year")
	if yearCol < 0 {
		return nil, fmt.Errorf("%w: invalid CSV format: expected a Year column, got %v", domain.ErrData, header)
	}
	var monthCols []int
	for i, name := range header {
		if _, ok := dateutil.MonthFromAbbreviation(name); ok {
			monthCols = append(monthCols, i)
		}
	}
	if len(monthCols) == 0 {
		return nil, fmt.Errorf("%w: invalid CSV format: no month columns in %v", domain.ErrData, header)
	}

	rates := make(map[int]decimal.Decimal)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read data row %d: %v", domain.ErrData, line, err)
		}

		year, err := strconv.Atoi(strings.TrimSpace(field(row, yearCol)))
		if err != nil {
			continue // Skip rows with invalid year
		}

		total := decimal.Zero
		good := 0
		for _, col := range monthCols {
			cell := strings.TrimSuffix(strings.TrimSpace(field(row, col)), "%")
			v, err := parseDecimal(cell)
			if err != nil {
				continue
			}
			total = total.Add(v.Div(decimalHundred))
			good++
		}
		if good == 0 {
			continue
		}
		rates[year] = total.Div(decimal.NewFromInt(int64(good)))
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no valid inflation rows found", domain.ErrData)
	}
	return rates, nil
}

// BuildRecords merges yearly prices and inflation rates over the years both cover. The CPI
// is chained from 100 in the first year: cpi(y+1) = cpi(y) * (1 + rate(y)).
func BuildRecords(prices map[int]YearlyPrice, inflation map[int]decimal.Decimal) ([]domain.YearlyMarketRecord, error) {
	var years []int
	for y := range prices {
		if _, ok := inflation[y]; ok {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: price and inflation histories share no years", domain.ErrData)
	}
	sort.Ints(years)

	expected := dateutil.YearRange(years[0], years[len(years)-1])
	if len(expected) != len(years) {
		return nil, fmt.Errorf("%w: missing years in merged history: %v", domain.ErrData, missingYears(expected, years))
	}

	records := make([]domain.YearlyMarketRecord, 0, len(years))
	cpi := baseCPI
	for i, y := range years {
		if i > 0 {
			cpi = cpi.Mul(decimalOne.Add(inflation[y-1])).Round(8)
		}
		p := prices[y]
		records = append(records, domain.YearlyMarketRecord{
			Year:       y,
			IndexValue: p.Open,
			CPI:        cpi,
			Close:      p.Close,
		})
	}
	return records, nil
}

func missingYears(expected, have []int) []int {
	present := make(map[int]bool, len(have))
	for _, y := range have {
		present[y] = true
	}
	var missing []int
	for _, y := range expected {
		if !present[y] {
			missing = append(missing, y)
		}
	}
	return missing
}

func columnIndex(header []string, names ...string) int {
	for i, h := range header {
		col := strings.ToLower(strings.Trim(strings.TrimSpace(h), `"`))
		for _, n := range names {
			if col == n {
				return i
			}
		}
	}
	return -1
}

func field(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}
