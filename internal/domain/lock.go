package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterestMode controls when a lock's interest is disbursed. It is persisted
// explicitly on the plan rather than inferred from request context.
type InterestMode string

const (
	// InterestModeUpfront credits interest immediately at lock creation.
	// Upfront locks have no early-exit transition at all.
	InterestModeUpfront InterestMode = "upfront"
	// InterestModeMaturity withholds interest until the term ends. An early
	// break is permitted after the minimum holding period, forfeiting all
	// interest plus a principal penalty.
	InterestModeMaturity InterestMode = "maturity"
)

// LockStatus is the lifecycle state of a lock plan.
// Transitions: active -> completed, active -> broken (maturity mode only).
// Terminal states have no outgoing transitions.
type LockStatus string

const (
	LockStatusActive    LockStatus = "active"
	LockStatusCompleted LockStatus = "completed"
	LockStatusBroken    LockStatus = "broken"
)

// LockParameters are the immutable inputs to a lock quote.
type LockParameters struct {
	Principal    decimal.Decimal `json:"principal"`
	DurationDays int             `json:"duration_days"`
	InterestMode InterestMode    `json:"interest_mode"`
	StartDate    time.Time       `json:"start_date"`
}

// LockQuote is the projected economics of a lock, shown before commitment
// and re-derived at settlement.
type LockQuote struct {
	Principal       decimal.Decimal `json:"principal"`
	DurationDays    int             `json:"duration_days"`
	AnnualRate      decimal.Decimal `json:"annual_rate_percent"`
	Interest        decimal.Decimal `json:"interest"`
	InterestMode    InterestMode    `json:"interest_mode"`
	MaturityDate    time.Time       `json:"maturity_date"`
	TotalAtMaturity decimal.Decimal `json:"total_at_maturity"`
}

// BreakQuote surfaces the full cost of an early break before the action is
// accepted. TotalLoss = Penalty + ForfeitedInterest.
type BreakQuote struct {
	Principal         decimal.Decimal `json:"principal"`
	Penalty           decimal.Decimal `json:"penalty"`
	ForfeitedInterest decimal.Decimal `json:"forfeited_interest"`
	TotalLoss         decimal.Decimal `json:"total_loss"`
	NetReceived       decimal.Decimal `json:"net_received"`
}

// LockPlan is the stateful fixed-term deposit entity.
type LockPlan struct {
	ID              uuid.UUID       `json:"id"`
	CustomerKey     string          `json:"customer_key"`
	Principal       decimal.Decimal `json:"principal"`
	DurationDays    int             `json:"duration_days"`
	AnnualRate      decimal.Decimal `json:"annual_rate_percent"`
	InterestMode    InterestMode    `json:"interest_mode"`
	Status          LockStatus      `json:"status"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	StartDate       time.Time       `json:"start_date"`
	MaturityDate    time.Time       `json:"maturity_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Matured reports whether the lock has reached its maturity date.
func (l *LockPlan) Matured(now time.Time) bool {
	return !now.Before(l.MaturityDate)
}

// HoldingDays returns whole days elapsed since the lock started.
func (l *LockPlan) HoldingDays(now time.Time) int {
	if now.Before(l.StartDate) {
		return 0
	}
	return int(now.Sub(l.StartDate).Hours() / 24)
}
