package calculation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laresh1090/pennivault/internal/domain"
)

func fullGroup(slots, totalRounds int, contribution decimal.Decimal, startFraction decimal.Decimal) *domain.RotatingGroup {
	g := &domain.RotatingGroup{
		TotalSlots:         slots,
		ContributionAmount: contribution,
		TotalRounds:        totalRounds,
		CurrentRound:       1,
		PayoutStartRound:   PayoutStartRound(totalRounds, startFraction),
		Status:             domain.GroupStatusActive,
	}
	for i := 1; i <= slots; i++ {
		g.Members = append(g.Members, domain.GroupMember{
			MemberKey: fmt.Sprintf("member-%d", i),
			Position:  i,
			JoinedAt:  time.Date(2026, 1, i, 0, 0, 0, 0, time.UTC),
		})
	}
	return g
}

func TestPayoutStartRoundMidpoint(t *testing.T) {
	half := d("0.5")

	// 10-round cycle at the midpoint starts paying at round 6.
	assert.Equal(t, 6, PayoutStartRound(10, half))
	assert.Equal(t, 5, PayoutStartRound(9, half))
	assert.Equal(t, 4, PayoutStartRound(6, half))
	// Fraction zero means payouts begin immediately.
	assert.Equal(t, 1, PayoutStartRound(10, d("0")))
}

func TestValidateGroupShape(t *testing.T) {
	half := d("0.5")

	assert.NoError(t, ValidateGroupShape(5, 10, half, d("1000")))

	err := ValidateGroupShape(1, 10, half, d("1000"))
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))

	err = ValidateGroupShape(5, 10, half, d("0"))
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))

	err = ValidateGroupShape(5, 10, d("1"), d("1000"))
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))

	// 6 payouts starting at round 6 would need an 11th round.
	err = ValidateGroupShape(6, 10, half, d("1000"))
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))
}

// 5-slot group with totalRounds=10 and midpoint start: positions 1..5
// receive payouts at rounds 6..10 respectively.
func TestBuildPayoutScheduleMidpointExample(t *testing.T) {
	g := fullGroup(5, 10, d("1000"), d("0.5"))
	require.Equal(t, 6, g.PayoutStartRound)

	schedule, err := BuildPayoutSchedule(g)
	require.NoError(t, err)
	require.Len(t, schedule, 5)

	for i, entry := range schedule {
		assert.Equal(t, 6+i, entry.Round)
		assert.Equal(t, i+1, entry.RecipientPosition)
		assert.True(t, entry.Amount.Equal(d("5000")), "round %d got %s", entry.Round, entry.Amount)
	}
}

// Every position collects exactly once.
func TestBuildPayoutScheduleCoversEachPositionOnce(t *testing.T) {
	g := fullGroup(7, 14, d("250.50"), d("0.5"))
	schedule, err := BuildPayoutSchedule(g)
	require.NoError(t, err)
	require.Len(t, schedule, 7)

	seen := make(map[int]bool)
	for _, entry := range schedule {
		require.False(t, seen[entry.RecipientPosition], "position %d paid twice", entry.RecipientPosition)
		seen[entry.RecipientPosition] = true
	}
	assert.Len(t, seen, 7)
}

func TestBuildPayoutScheduleVendorSplit(t *testing.T) {
	g := fullGroup(5, 10, d("1000.01"), d("0.5"))
	realPct := d("60")
	g.VendorRealPercent = &realPct

	schedule, err := BuildPayoutSchedule(g)
	require.NoError(t, err)

	for _, entry := range schedule {
		// 5000.05 * 60% = 3000.03
		assert.True(t, entry.RealAmount.Equal(d("3000.03")), "real got %s", entry.RealAmount)
		assert.True(t, entry.VirtualAmount.Equal(d("2000.02")), "virtual got %s", entry.VirtualAmount)
		assert.True(t, entry.RealAmount.Add(entry.VirtualAmount).Equal(entry.Amount),
			"rails must sum to nominal payout")
	}
}

func TestBuildPayoutScheduleRequiresFullGroup(t *testing.T) {
	g := fullGroup(5, 10, d("1000"), d("0.5"))
	g.Members = g.Members[:3]
	_, err := BuildPayoutSchedule(g)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))
}

func TestBuildPayoutScheduleRejectsDuplicatePositions(t *testing.T) {
	g := fullGroup(5, 10, d("1000"), d("0.5"))
	g.Members[4].Position = 2
	_, err := BuildPayoutSchedule(g)
	assert.True(t, errors.Is(err, domain.ErrInvalidParameters))
}

func TestRoundStatus(t *testing.T) {
	assert.Equal(t, domain.RoundStatusCompleted, RoundStatus(3, 5))
	assert.Equal(t, domain.RoundStatusCurrent, RoundStatus(5, 5))
	assert.Equal(t, domain.RoundStatusUpcoming, RoundStatus(7, 5))
}

// Before the payout start round, all positions are visible but upcoming.
func TestTurnTableAccumulationPhase(t *testing.T) {
	g := fullGroup(5, 10, d("1000"), d("0.5"))
	schedule, err := BuildPayoutSchedule(g)
	require.NoError(t, err)
	g.Schedule = schedule
	g.CurrentRound = 1

	rows := TurnTable(g)
	require.Len(t, rows, 10)

	for _, row := range rows[:5] {
		assert.True(t, row.Accumulating, "round %d should accumulate", row.Round)
		assert.Zero(t, row.RecipientPosition)
	}
	assert.Equal(t, domain.RoundStatusCurrent, rows[0].Status)
	for _, row := range rows[1:] {
		assert.Equal(t, domain.RoundStatusUpcoming, row.Status, "round %d", row.Round)
	}
	for i, row := range rows[5:] {
		assert.False(t, row.Accumulating)
		assert.Equal(t, i+1, row.RecipientPosition)
		assert.Equal(t, fmt.Sprintf("member-%d", i+1), row.MemberKey)
	}
}
