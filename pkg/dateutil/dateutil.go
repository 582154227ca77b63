package dateutil

import (
	"fmt"
	"strings"
	"time"
)

// dayLayouts lists the date layouts accepted in historical price files.
var dayLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// ParseDay parses a trading-day date in any of the supported layouts, in UTC.
func ParseDay(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// MonthAbbreviations are the three-letter month column names used by monthly tables.
var MonthAbbreviations = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthFromAbbreviation returns the month for a three-letter abbreviation, case-insensitive.
func MonthFromAbbreviation(name string) (time.Month, bool) {
	n := strings.TrimSpace(name)
	for i, m := range MonthAbbreviations {
		if strings.EqualFold(n, m) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// YearRange returns the inclusive list of years from first to last.
func YearRange(first, last int) []int {
	if last < first {
		return nil
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
