package rates

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func validTiers() []Tier {
	return []Tier{
		{MinDays: 1, MaxDays: 30, AnnualRatePercent: pct(4.5)},
		{MinDays: 31, MaxDays: 90, AnnualRatePercent: pct(6)},
		{MinDays: 91, MaxDays: 180, AnnualRatePercent: pct(8)},
		{MinDays: 181, MaxDays: 365, AnnualRatePercent: pct(10.5)},
	}
}

func TestNewTableValid(t *testing.T) {
	table, err := NewTable(validTiers())
	require.NoError(t, err)
	assert.Equal(t, 1, table.MinDuration())
	assert.Equal(t, 365, table.MaxDuration())
}

func TestNewTableSortsInput(t *testing.T) {
	tiers := validTiers()
	tiers[0], tiers[3] = tiers[3], tiers[0]
	table, err := NewTable(tiers)
	require.NoError(t, err)

	rate, err := table.RateForDuration(10)
	require.NoError(t, err)
	assert.True(t, rate.Equal(pct(4.5)))
}

func TestNewTableRejectsGap(t *testing.T) {
	tiers := validTiers()
	tiers[1].MinDays = 40 // leaves days 31-39 uncovered
	_, err := NewTable(tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap")
}

func TestNewTableRejectsOverlap(t *testing.T) {
	tiers := validTiers()
	tiers[1].MinDays = 25
	_, err := NewTable(tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestNewTableRejectsNonMonotonicRates(t *testing.T) {
	tiers := validTiers()
	tiers[3].AnnualRatePercent = pct(5) // longer term paying less
	_, err := NewTable(tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monotonic")
}

func TestNewTableRejectsEmpty(t *testing.T) {
	_, err := NewTable(nil)
	assert.Error(t, err)
}

func TestRateForDurationBoundaries(t *testing.T) {
	table, err := NewTable(validTiers())
	require.NoError(t, err)

	tests := []struct {
		days int
		want decimal.Decimal
	}{
		{1, pct(4.5)},
		{30, pct(4.5)},
		{31, pct(6)},
		{90, pct(6)},
		{91, pct(8)},
		{180, pct(8)},
		{181, pct(10.5)},
		{365, pct(10.5)},
	}
	for _, tt := range tests {
		rate, err := table.RateForDuration(tt.days)
		require.NoError(t, err, "days %d", tt.days)
		assert.True(t, rate.Equal(tt.want), "days %d: got %s want %s", tt.days, rate, tt.want)
	}
}

func TestRateForDurationOutsideTable(t *testing.T) {
	table, err := NewTable(validTiers())
	require.NoError(t, err)

	_, err = table.RateForDuration(366)
	assert.Error(t, err)
	_, err = table.RateForDuration(0)
	assert.Error(t, err)
}

// Monotonicity must hold across the whole configured range: a strictly
// longer duration never yields a strictly lower rate.
func TestRateMonotonicityAcrossFullTable(t *testing.T) {
	table, err := NewTable(validTiers())
	require.NoError(t, err)

	prev := decimal.Zero
	for days := table.MinDuration(); days <= table.MaxDuration(); days++ {
		rate, err := table.RateForDuration(days)
		require.NoError(t, err)
		require.True(t, rate.GreaterThanOrEqual(prev),
			"rate for %d days (%s) dropped below rate for %d days (%s)", days, rate, days-1, prev)
		prev = rate
	}
}
