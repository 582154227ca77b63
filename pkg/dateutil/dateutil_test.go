package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "ISO date",
			input:    "1987-10-19",
			expected: time.Date(1987, 10, 19, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "US date with padding",
			input:    "01/03/1950",
			expected: time.Date(1950, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "US date without padding",
			input:    "1/3/1950",
			expected: time.Date(1950, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "surrounding whitespace",
			input:    "  2008-09-29 ",
			expected: time.Date(2008, 9, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDay(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	_, err := ParseDay("yesterday")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized date")
}

func TestMonthFromAbbreviation(t *testing.T) {
	m, ok := MonthFromAbbreviation("jan")
	assert.True(t, ok)
	assert.Equal(t, time.January, m)

	m, ok = MonthFromAbbreviation("Dec")
	assert.True(t, ok)
	assert.Equal(t, time.December, m)

	_, ok = MonthFromAbbreviation("Ave")
	assert.False(t, ok)
}

func TestYearRange(t *testing.T) {
	assert.Equal(t, []int{1999, 2000, 2001}, YearRange(1999, 2001))
	assert.Equal(t, []int{2020}, YearRange(2020, 2020))
	assert.Nil(t, YearRange(2021, 2020))
}
