package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		pct    string
		want   string
	}{
		{"forty percent of price", "85000000", "40", "34000000"},
		{"five percent markup", "51000000", "5", "2550000"},
		{"zero percent is exactly zero", "12345.67", "0", "0"},
		{"half cent rounds up", "100.01", "0.5", "0.5"},
		{"small amount", "0.01", "50", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(d(tt.amount), d(tt.pct))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.True(t, Round(d("10.005")).Equal(d("10.01")))
	assert.True(t, Round(d("10.004")).Equal(d("10.00")))
	assert.True(t, Round(d("10")).Equal(d("10")))
}

func TestDivideEvenly(t *testing.T) {
	tests := []struct {
		name          string
		total         string
		n             int
		wantPer       string
		wantRemainder string
	}{
		{"exact division", "53550000", 6, "8925000", "0"},
		{"one cent short", "100.00", 3, "33.33", "0.01"},
		{"one cent over", "100.01", 3, "33.34", "-0.01"},
		{"single payment balloon", "5000", 1, "5000", "0"},
		{"tiny total", "0.05", 4, "0.01", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			per, rem := DivideEvenly(d(tt.total), tt.n)
			assert.True(t, per.Equal(d(tt.wantPer)), "perUnit got %s want %s", per, tt.wantPer)
			assert.True(t, rem.Equal(d(tt.wantRemainder)), "remainder got %s want %s", rem, tt.wantRemainder)
		})
	}
}

// The remainder must always reconcile: n-1 regular units plus one adjusted
// final unit sum back to the original total with zero residual.
func TestDivideEvenlyReconciles(t *testing.T) {
	totals := []string{"100.00", "100.01", "99.99", "53550000", "1", "0.01", "777777.77"}
	for _, total := range totals {
		for n := 1; n <= 24; n++ {
			per, rem := DivideEvenly(d(total), n)
			sum := per.Mul(decimal.NewFromInt(int64(n - 1))).Add(per.Add(rem))
			require.True(t, sum.Equal(d(total)),
				"total %s n %d: %s*%d + %s != %s", total, n, per, n-1, rem, total)
		}
	}
}

func TestDivideEvenlyInvalidCount(t *testing.T) {
	per, rem := DivideEvenly(d("100"), 0)
	assert.True(t, per.IsZero())
	assert.True(t, rem.IsZero())
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(d("20"), d("20"), d("60")))
	assert.True(t, InRange(d("60"), d("20"), d("60")))
	assert.False(t, InRange(d("19.99"), d("20"), d("60")))
	assert.False(t, InRange(d("60.01"), d("20"), d("60")))
}
