package calculation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laresh1090/pennivault/internal/config"
	"github.com/laresh1090/pennivault/internal/domain"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(config.Default())
	require.NoError(t, err)
	return engine
}

func TestNewEngineRejectsBadCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.RateTiers = nil
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngineQuoteInstallmentUsesCatalogMarkup(t *testing.T) {
	engine := testEngine(t)

	b, err := engine.QuoteInstallment(d("85000000"), d("40"), 6)
	require.NoError(t, err)
	// The 6-month catalog term carries 5% markup.
	assert.True(t, b.MarkupPercent.Equal(d("5")))
	assert.True(t, b.TotalCost.Equal(d("87550000")))
}

func TestEngineQuoteInstallmentRejectsUnknownTerm(t *testing.T) {
	engine := testEngine(t)
	_, err := engine.QuoteInstallment(d("1000"), d("40"), 9)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))
}

func TestEngineQuoteInstallmentEnforcesUpfrontBounds(t *testing.T) {
	engine := testEngine(t)

	_, err := engine.QuoteInstallment(d("1000"), d("10"), 6)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))

	_, err = engine.QuoteInstallment(d("1000"), d("75"), 6)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))

	_, err = engine.QuoteInstallment(d("1000"), d("20"), 6)
	assert.NoError(t, err)
	_, err = engine.QuoteInstallment(d("1000"), d("60"), 6)
	assert.NoError(t, err)
}

func TestEngineLadderFor(t *testing.T) {
	engine := testEngine(t)
	b, err := engine.QuoteInstallment(d("85000000"), d("40"), 6)
	require.NoError(t, err)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ladder, err := engine.LadderFor(b, start, 6)
	require.NoError(t, err)
	require.Len(t, ladder, 6)
	// 180-day term, 6 rungs, 30 days apart.
	assert.Equal(t, start.AddDate(0, 0, 30), ladder[0].DueDate)
	assert.Equal(t, start.AddDate(0, 0, 180), ladder[5].DueDate)
}

func TestEngineBreakQuoteFor(t *testing.T) {
	engine := testEngine(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := &domain.LockPlan{
		Principal:       d("100000"),
		DurationDays:    180,
		AnnualRate:      d("8"),
		InterestMode:    domain.InterestModeMaturity,
		Status:          domain.LockStatusActive,
		AccruedInterest: d("1500"),
		StartDate:       start,
		MaturityDate:    start.AddDate(0, 0, 180),
	}

	// Too early: default minimum holding period is 30 days.
	_, err := engine.BreakQuoteFor(plan, start.AddDate(0, 0, 10))
	assert.True(t, errors.Is(err, domain.ErrEarlyExitNotPermitted))

	quote, err := engine.BreakQuoteFor(plan, start.AddDate(0, 0, 60))
	require.NoError(t, err)
	// Default penalty 2.5% of principal.
	assert.True(t, quote.Penalty.Equal(d("2500")))
	assert.True(t, quote.TotalLoss.Equal(d("4000")))
	assert.True(t, quote.NetReceived.Equal(d("97500")))
}

func TestEngineGroupHelpers(t *testing.T) {
	engine := testEngine(t)

	assert.Equal(t, 6, engine.GroupStartRound(10))
	assert.NoError(t, engine.ValidateGroup(5, 10, d("1000")))
	assert.Error(t, engine.ValidateGroup(6, 10, d("1000")))
	assert.True(t, engine.VendorRealPercent().Equal(d("60")))
}
