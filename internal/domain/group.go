package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupStatus is the lifecycle state of a rotating group.
type GroupStatus string

const (
	// GroupStatusOpen means slots are still filling; positions may change.
	GroupStatusOpen GroupStatus = "open"
	// GroupStatusActive means the group is full, positions are frozen and
	// rounds are running.
	GroupStatusActive    GroupStatus = "active"
	GroupStatusCompleted GroupStatus = "completed"
)

// RoundStatus is the derived display state of one round of the cycle.
type RoundStatus string

const (
	RoundStatusCompleted RoundStatus = "completed"
	RoundStatusCurrent   RoundStatus = "current"
	RoundStatusUpcoming  RoundStatus = "upcoming"
)

// GroupMember holds one slot of a rotating group. Position is assigned at
// join time and is immutable once the group is full.
type GroupMember struct {
	MemberKey           string    `json:"member_key"`
	Position            int       `json:"position"`
	HasPaidCurrentRound bool      `json:"has_paid_current_round"`
	JoinedAt            time.Time `json:"joined_at"`
}

// PayoutEntry is one row of a group's payout schedule. For vendor-sponsored
// groups the pool is split between a cash rail (RealAmount) and a product
// credit rail (VirtualAmount); RealAmount + VirtualAmount == Amount always.
type PayoutEntry struct {
	Round             int             `json:"round"`
	RecipientPosition int             `json:"recipient_position"`
	Amount            decimal.Decimal `json:"amount"`
	RealAmount        decimal.Decimal `json:"real_amount"`
	VirtualAmount     decimal.Decimal `json:"virtual_amount"`
}

// RotatingGroup is the stateful Ajo entity.
//
// PayoutStartRound is the round at which the first member receives a payout.
// It is computed once at group formation from TotalRounds and the configured
// start fraction; before it, contributions pool without disbursement.
type RotatingGroup struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	TotalSlots         int             `json:"total_slots"`
	ContributionAmount decimal.Decimal `json:"contribution_amount"`
	TotalRounds        int             `json:"total_rounds"`
	CurrentRound       int             `json:"current_round"`
	PayoutStartRound   int             `json:"payout_start_round"`
	Members            []GroupMember   `json:"members"`
	// VendorRealPercent is the vendor-configured cash share of each payout.
	// Nil for plain (non-vendor) groups.
	VendorRealPercent *decimal.Decimal `json:"vendor_real_percent,omitempty"`
	Schedule          []PayoutEntry    `json:"schedule,omitempty"`
	Status            GroupStatus      `json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// FilledSlots returns the number of occupied positions.
func (g *RotatingGroup) FilledSlots() int {
	return len(g.Members)
}

// Full reports whether every slot is taken.
func (g *RotatingGroup) Full() bool {
	return len(g.Members) == g.TotalSlots
}

// Member returns the member at the given position, or nil.
func (g *RotatingGroup) Member(position int) *GroupMember {
	for i := range g.Members {
		if g.Members[i].Position == position {
			return &g.Members[i]
		}
	}
	return nil
}

// AllPaidCurrentRound reports whether every filled slot has contributed for
// the current round. The round must never advance while this is false.
func (g *RotatingGroup) AllPaidCurrentRound() bool {
	for i := range g.Members {
		if !g.Members[i].HasPaidCurrentRound {
			return false
		}
	}
	return len(g.Members) > 0
}

// PayoutForRound returns the schedule entry for the given round, or nil when
// the round falls in the accumulation phase.
func (g *RotatingGroup) PayoutForRound(round int) *PayoutEntry {
	for i := range g.Schedule {
		if g.Schedule[i].Round == round {
			return &g.Schedule[i]
		}
	}
	return nil
}
