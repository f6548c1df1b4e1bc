package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laresh1090/pennivault/internal/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₦0.00"},
		{"950", "₦950.00"},
		{"8925000", "₦8,925,000.00"},
		{"85000000", "₦85,000,000.00"},
		{"1234.5", "₦1,234.50"},
		{"-26.66", "-₦26.66"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(d(tt.in)), tt.in)
	}
}

func sampleBreakdown() domain.PaymentBreakdown {
	return domain.PaymentBreakdown{
		ItemPrice:          d("85000000"),
		UpfrontAmount:      d("34000000"),
		RemainingBase:      d("51000000"),
		MarkupPercent:      d("5"),
		MarkupAmount:       d("2550000"),
		MonthlyAmount:      d("8925000"),
		NumberOfPayments:   6,
		TotalCost:          d("87550000"),
		RoundingAdjustment: d("0"),
	}
}

func TestRenderQuoteConsole(t *testing.T) {
	ladder := []domain.InstallmentPayment{
		{PaymentNumber: 1, Amount: d("8925000"), DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending},
	}
	out, err := RenderQuote(sampleBreakdown(), ladder, FormatConsole)
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "₦85,000,000.00")
	assert.Contains(t, s, "₦8,925,000.00 x 6")
	assert.Contains(t, s, "2026-03-01")
	assert.NotContains(t, s, "Final Adjustment")
}

func TestRenderQuoteShowsAdjustment(t *testing.T) {
	b := sampleBreakdown()
	b.RoundingAdjustment = d("-0.01")
	out, err := RenderQuote(b, nil, FormatConsole)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Final Adjustment")
}

func TestRenderQuoteJSON(t *testing.T) {
	out, err := RenderQuote(sampleBreakdown(), nil, FormatJSON)
	require.NoError(t, err)

	var payload quotePayload
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.True(t, payload.Breakdown.TotalCost.Equal(d("87550000")))
	assert.Empty(t, payload.Ladder)
}

func TestRenderQuoteCSV(t *testing.T) {
	ladder := []domain.InstallmentPayment{
		{PaymentNumber: 1, Amount: d("26.67"), DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending},
		{PaymentNumber: 2, Amount: d("26.66"), DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Status: domain.PaymentStatusPending},
	}
	out, err := RenderQuote(domain.PaymentBreakdown{}, ladder, FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Payment,DueDate,Amount,Status", lines[0])
	assert.Equal(t, "1,2026-03-01,26.67,pending", lines[1])
}

func TestRenderQuoteUnsupportedFormat(t *testing.T) {
	_, err := RenderQuote(sampleBreakdown(), nil, "xml")
	assert.Error(t, err)
}

func TestRenderBreakQuoteConsole(t *testing.T) {
	q := domain.BreakQuote{
		Principal:         d("10000"),
		Penalty:           d("250"),
		ForfeitedInterest: d("147.95"),
		TotalLoss:         d("397.95"),
		NetReceived:       d("9750"),
	}
	out, err := RenderBreakQuote(q, FormatConsole)
	require.NoError(t, err)
	assert.Contains(t, string(out), "You Receive:         ₦9,750.00")
	assert.Contains(t, string(out), "Total Loss:          ₦397.95")
}

func TestRenderGoalConsole(t *testing.T) {
	p := domain.GoalProjection{
		ContributionAmount: d("5000"),
		TargetAmount:       d("200000"),
		Frequency:          domain.FrequencyWeekly,
		IntervalsNeeded:    40,
		TotalDays:          280,
		ProjectedTotal:     d("200000"),
		HumanDuration:      "9 months, 1 week",
	}
	out, err := RenderGoal(p, FormatConsole)
	require.NoError(t, err)
	assert.Contains(t, string(out), "₦5,000.00 weekly")
	assert.Contains(t, string(out), "9 months, 1 week (280 days)")
}
