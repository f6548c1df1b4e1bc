package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/money"
)

// PayoutStartRound computes the round at which rotation payouts begin under
// the midpoint-turn model: floor(totalRounds * startFraction) + 1. With the
// default fraction of 0.5, a 10-round cycle starts paying out at round 6,
// so contributions pool for the first half of the cycle.
func PayoutStartRound(totalRounds int, startFraction decimal.Decimal) int {
	offset := decimal.NewFromInt(int64(totalRounds)).Mul(startFraction).Floor().IntPart()
	return int(offset) + 1
}

// ValidateGroupShape checks that a group's configured cycle can host one
// payout per slot once rotation begins.
func ValidateGroupShape(totalSlots, totalRounds int, startFraction, contribution decimal.Decimal) error {
	if totalSlots < 2 {
		return fmt.Errorf("%w: a rotating group needs at least 2 slots, got %d", domain.ErrInvalidParameters, totalSlots)
	}
	if !money.IsPositive(contribution) {
		return fmt.Errorf("%w: contribution must be positive, got %s", domain.ErrInvalidParameters, contribution)
	}
	if startFraction.IsNegative() || startFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: payout start fraction must be in [0,1), got %s", domain.ErrInvalidParameters, startFraction)
	}
	startRound := PayoutStartRound(totalRounds, startFraction)
	if lastRound := startRound + totalSlots - 1; lastRound > totalRounds {
		return fmt.Errorf("%w: %d rounds cannot host %d payouts starting at round %d",
			domain.ErrInvalidParameters, totalRounds, totalSlots, startRound)
	}
	return nil
}

// BuildPayoutSchedule derives the full payout table for a filled group. It is
// generated exactly once, when the last slot fills, and is never recomputed
// after funding begins: for round r in [payoutStartRound,
// payoutStartRound+totalSlots-1] the member at position r-payoutStartRound+1
// collects the whole pool for that round.
//
// For vendor-sponsored groups each payout is split between the cash rail and
// the product-credit rail by vendorRealPercent; the virtual part takes the
// rounding difference so the rails always sum to the nominal payout.
func BuildPayoutSchedule(g *domain.RotatingGroup) ([]domain.PayoutEntry, error) {
	if !g.Full() {
		return nil, fmt.Errorf("%w: schedule requires all %d slots filled, have %d",
			domain.ErrInvalidParameters, g.TotalSlots, g.FilledSlots())
	}

	seen := make(map[int]bool, g.TotalSlots)
	for _, m := range g.Members {
		if m.Position < 1 || m.Position > g.TotalSlots || seen[m.Position] {
			return nil, fmt.Errorf("%w: member positions must be unique and contiguous (bad position %d)",
				domain.ErrInvalidParameters, m.Position)
		}
		seen[m.Position] = true
	}

	pool := g.ContributionAmount.Mul(decimal.NewFromInt(int64(g.TotalSlots)))
	schedule := make([]domain.PayoutEntry, g.TotalSlots)
	for i := 0; i < g.TotalSlots; i++ {
		entry := domain.PayoutEntry{
			Round:             g.PayoutStartRound + i,
			RecipientPosition: i + 1,
			Amount:            pool,
			RealAmount:        pool,
			VirtualAmount:     decimal.Zero,
		}
		if g.VendorRealPercent != nil {
			entry.RealAmount = money.Percent(pool, *g.VendorRealPercent)
			entry.VirtualAmount = pool.Sub(entry.RealAmount)
		}
		schedule[i] = entry
	}
	return schedule, nil
}

// RoundStatus derives the display state of one round relative to the group's
// progress. Rounds before the payout start still appear in the turn table,
// marked upcoming until the cycle reaches them.
func RoundStatus(round, currentRound int) domain.RoundStatus {
	switch {
	case round < currentRound:
		return domain.RoundStatusCompleted
	case round == currentRound:
		return domain.RoundStatusCurrent
	default:
		return domain.RoundStatusUpcoming
	}
}

// TurnRow is one display row of a group's full turn-order table.
type TurnRow struct {
	Round             int                `json:"round"`
	RecipientPosition int                `json:"recipient_position,omitempty"`
	MemberKey         string             `json:"member_key,omitempty"`
	Amount            decimal.Decimal    `json:"amount"`
	Status            domain.RoundStatus `json:"status"`
	Accumulating      bool               `json:"accumulating"`
}

// TurnTable renders every round of the cycle, including the accumulation
// rounds before payouts begin, so members can see the whole cycle at once.
func TurnTable(g *domain.RotatingGroup) []TurnRow {
	rows := make([]TurnRow, 0, g.TotalRounds)
	for round := 1; round <= g.TotalRounds; round++ {
		row := TurnRow{
			Round:        round,
			Status:       RoundStatus(round, g.CurrentRound),
			Accumulating: round < g.PayoutStartRound,
		}
		if entry := g.PayoutForRound(round); entry != nil {
			row.RecipientPosition = entry.RecipientPosition
			row.Amount = entry.Amount
			if m := g.Member(entry.RecipientPosition); m != nil {
				row.MemberKey = m.MemberKey
			}
		}
		rows = append(rows, row)
	}
	return rows
}
