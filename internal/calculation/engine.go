package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/config"
	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/money"
	"github.com/laresh1090/pennivault/internal/rates"
)

// Engine binds the pure calculators to a validated product catalog. It holds
// no mutable state and performs no I/O; every method is deterministic in its
// arguments, so a quote computed here can be recomputed byte-for-byte at
// settlement time.
type Engine struct {
	cfg   *config.Config
	rates *rates.Table
}

// NewEngine validates the catalog's rate table and returns an engine over it.
func NewEngine(cfg *config.Config) (*Engine, error) {
	table, err := cfg.RateTable()
	if err != nil {
		return nil, fmt.Errorf("failed to build rate table: %w", err)
	}
	return &Engine{cfg: cfg, rates: table}, nil
}

// Config returns the catalog the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Rates returns the validated rate table.
func (e *Engine) Rates() *rates.Table {
	return e.rates
}

// QuoteInstallment computes the breakdown for a purchase, taking the markup
// from the catalog term and enforcing the vendor upfront bounds.
func (e *Engine) QuoteInstallment(price, upfrontPercent decimal.Decimal, termMonths int) (domain.PaymentBreakdown, error) {
	term, ok := e.cfg.TermByMonths(termMonths)
	if !ok {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: no %d-month installment term is offered", domain.ErrInvalidParameters, termMonths)
	}
	inst := e.cfg.Installment
	if !money.InRange(upfrontPercent, inst.MinUpfrontPercent, inst.MaxUpfrontPercent) {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: upfront percent %s outside allowed range %s-%s",
			domain.ErrInvalidParameters, upfrontPercent, inst.MinUpfrontPercent, inst.MaxUpfrontPercent)
	}
	return CalculateBreakdown(price, upfrontPercent, term.MarkupPercent, term.Months)
}

// LadderFor generates the payment ladder for a breakdown using the catalog
// term length.
func (e *Engine) LadderFor(b domain.PaymentBreakdown, startDate time.Time, termMonths int) ([]domain.InstallmentPayment, error) {
	term, ok := e.cfg.TermByMonths(termMonths)
	if !ok {
		return nil, fmt.Errorf("%w: no %d-month installment term is offered", domain.ErrInvalidParameters, termMonths)
	}
	return BuildPaymentLadder(b, startDate, term.TermDays)
}

// QuoteLock projects a lock against the catalog rate table.
func (e *Engine) QuoteLock(params domain.LockParameters) (domain.LockQuote, error) {
	return QuoteLock(params, e.rates)
}

// BreakQuoteFor computes the break economics for a lock, first checking the
// break is permitted at all. The quote never mutates the plan.
func (e *Engine) BreakQuoteFor(plan *domain.LockPlan, now time.Time) (domain.BreakQuote, error) {
	if err := BreakPermitted(plan, now, e.cfg.Lock.MinimumHoldingDays); err != nil {
		return domain.BreakQuote{}, err
	}
	return BreakEconomics(plan.Principal, plan.AccruedInterest, e.cfg.Lock.BreakPenaltyPercent), nil
}

// ProjectGoal estimates time-to-target for a recurring savings plan.
func (e *Engine) ProjectGoal(contribution, target decimal.Decimal, frequency domain.Frequency) (domain.GoalProjection, error) {
	return ProjectGoal(contribution, target, frequency)
}

// GroupStartRound computes the payout start round for a new group from the
// catalog's start fraction.
func (e *Engine) GroupStartRound(totalRounds int) int {
	return PayoutStartRound(totalRounds, e.cfg.Ajo.PayoutStartFraction)
}

// ValidateGroup checks a proposed group shape against the catalog.
func (e *Engine) ValidateGroup(totalSlots, totalRounds int, contribution decimal.Decimal) error {
	return ValidateGroupShape(totalSlots, totalRounds, e.cfg.Ajo.PayoutStartFraction, contribution)
}

// VendorRealPercent returns the configured cash share for vendor groups.
func (e *Engine) VendorRealPercent() decimal.Decimal {
	return e.cfg.Ajo.VendorRealPercent
}
