package calculation

import (
	"testing"

	"github.com/rpgo/buyhold/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflationAdjuster(t *testing.T) {
	s := mustSeries(t, steadyGrowth(2000, 2002, map[int]int64{2000: 100, 2001: 103, 2002: 125}))
	amount := decimal.NewFromInt(30000)

	tests := []struct {
		name        string
		base        int
		target      int
		wantNominal string
	}{
		{"same year", 2000, 2000, "30000"},
		{"one year later", 2000, 2001, "30900"},
		{"two years later", 2000, 2002, "37500"},
		{"backwards", 2002, 2000, "24000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nominal, err := RealToNominal(amount, tt.base, tt.target, s)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNominal, nominal.String())

			back, err := NominalToReal(nominal, tt.base, tt.target, s)
			require.NoError(t, err)
			assert.True(t, back.Equal(amount), "round trip gave %s", back)
		})
	}
}

func TestCumulativeInflation(t *testing.T) {
	s := mustSeries(t, steadyGrowth(2000, 2002, map[int]int64{2000: 100, 2001: 103, 2002: 125}))

	got, err := CumulativeInflation(2000, 2002, s)
	require.NoError(t, err)
	assert.Equal(t, "0.25", got.String())

	got, err = CumulativeInflation(2001, 2001, s)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestInflationAdjusterMissingYear(t *testing.T) {
	s := mustSeries(t, steadyGrowth(2000, 2001, nil))

	_, err := RealToNominal(decimal.NewFromInt(1), 2000, 2010, s)
	assert.ErrorIs(t, err, domain.ErrData)

	_, err = NominalToReal(decimal.NewFromInt(1), 1999, 2000, s)
	assert.ErrorIs(t, err, domain.ErrData)

	_, err = CumulativeInflation(1999, 1999, s)
	assert.ErrorIs(t, err, domain.ErrData)
}
