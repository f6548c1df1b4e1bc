package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/money"
	"github.com/laresh1090/pennivault/internal/rates"
)

var daysPerYear = decimal.NewFromInt(365)

// LockInterest computes simple interest for a fixed-term deposit:
// round(principal * rate/100 * days/365). No compounding; the formula is
// deliberately simple enough to show to end users.
func LockInterest(principal, annualRatePercent decimal.Decimal, durationDays int) decimal.Decimal {
	days := decimal.NewFromInt(int64(durationDays))
	return money.Round(principal.
		Mul(annualRatePercent).Div(decimal.NewFromInt(100)).
		Mul(days).Div(daysPerYear))
}

// QuoteLock projects the economics of a lock before any funds move. The rate
// is resolved from the tier table by duration; the same quote is re-derived
// at creation time so a stale client preview can never authorize a transfer.
func QuoteLock(params domain.LockParameters, table *rates.Table) (domain.LockQuote, error) {
	if !money.IsPositive(params.Principal) {
		return domain.LockQuote{}, fmt.Errorf("%w: principal must be positive, got %s", domain.ErrInvalidParameters, params.Principal)
	}
	if params.InterestMode != domain.InterestModeUpfront && params.InterestMode != domain.InterestModeMaturity {
		return domain.LockQuote{}, fmt.Errorf("%w: unknown interest mode %q", domain.ErrInvalidParameters, params.InterestMode)
	}
	rate, err := table.RateForDuration(params.DurationDays)
	if err != nil {
		return domain.LockQuote{}, fmt.Errorf("%w: %v", domain.ErrInvalidParameters, err)
	}

	interest := LockInterest(params.Principal, rate, params.DurationDays)
	return domain.LockQuote{
		Principal:       params.Principal,
		DurationDays:    params.DurationDays,
		AnnualRate:      rate,
		Interest:        interest,
		InterestMode:    params.InterestMode,
		MaturityDate:    params.StartDate.AddDate(0, 0, params.DurationDays),
		TotalAtMaturity: params.Principal.Add(interest),
	}, nil
}

// BreakEconomics computes what an early break costs: a principal penalty plus
// forfeiture of all accrued interest. Penalty and forfeiture are surfaced
// together as TotalLoss so the caller can demand acknowledgment of the full
// damage before accepting the irreversible transition.
func BreakEconomics(principal, accruedInterest, penaltyPercent decimal.Decimal) domain.BreakQuote {
	penalty := money.Percent(principal, penaltyPercent)
	return domain.BreakQuote{
		Principal:         principal,
		Penalty:           penalty,
		ForfeitedInterest: accruedInterest,
		TotalLoss:         penalty.Add(accruedInterest),
		NetReceived:       principal.Sub(penalty),
	}
}

// BreakPermitted checks whether a lock may be broken at the given time.
// Upfront-mode locks have no early-exit path at all; maturity-mode locks may
// break only once the minimum holding period has elapsed.
func BreakPermitted(plan *domain.LockPlan, now time.Time, minimumHoldingDays int) error {
	if plan.Status != domain.LockStatusActive {
		return fmt.Errorf("%w: lock is %s", domain.ErrAlreadySettled, plan.Status)
	}
	if plan.InterestMode == domain.InterestModeUpfront {
		return fmt.Errorf("%w: upfront-interest locks cannot be broken before maturity", domain.ErrEarlyExitNotPermitted)
	}
	if plan.Matured(now) {
		return fmt.Errorf("%w: lock has matured; withdraw instead of breaking", domain.ErrEarlyExitNotPermitted)
	}
	if held := plan.HoldingDays(now); held < minimumHoldingDays {
		return fmt.Errorf("%w: minimum holding period is %d days, held %d", domain.ErrEarlyExitNotPermitted, minimumHoldingDays, held)
	}
	return nil
}
