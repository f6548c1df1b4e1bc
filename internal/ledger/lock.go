package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laresh1090/pennivault/internal/domain"
)

// CreateLock opens a fixed-term lock. The principal is debited up front; in
// upfront interest mode the full-term interest is credited back immediately,
// which is why upfront locks can never be broken early.
func (l *Ledger) CreateLock(ctx context.Context, customerKey string, principal decimal.Decimal, durationDays int, mode domain.InterestMode, startDate time.Time) (*domain.LockPlan, error) {
	quote, err := l.engine.QuoteLock(domain.LockParameters{
		Principal:    principal,
		DurationDays: durationDays,
		InterestMode: mode,
		StartDate:    startDate,
	})
	if err != nil {
		return nil, err
	}

	if err := l.wallet.Debit(ctx, customerKey, principal); err != nil {
		return nil, fmt.Errorf("principal debit failed: %w", err)
	}
	if mode == domain.InterestModeUpfront {
		if err := l.wallet.Credit(ctx, customerKey, quote.Interest); err != nil {
			return nil, fmt.Errorf("upfront interest credit failed: %w", err)
		}
	}

	now := time.Now().UTC()
	plan := &domain.LockPlan{
		ID:              uuid.New(),
		CustomerKey:     customerKey,
		Principal:       principal,
		DurationDays:    durationDays,
		AnnualRate:      quote.AnnualRate,
		InterestMode:    mode,
		Status:          domain.LockStatusActive,
		AccruedInterest: quote.Interest,
		StartDate:       startDate,
		MaturityDate:    quote.MaturityDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := l.storage.CreateLockPlan(plan); err != nil {
		return nil, fmt.Errorf("failed to store lock plan: %w", err)
	}

	l.logger.Info("lock created",
		zap.String("lock_id", plan.ID.String()),
		zap.String("customer", customerKey),
		zap.String("mode", string(mode)),
		zap.String("interest", quote.Interest.StringFixed(2)))
	return plan, nil
}

// LockBreakQuote previews the cost of breaking a lock without touching it.
func (l *Ledger) LockBreakQuote(lockID uuid.UUID, now time.Time) (domain.BreakQuote, error) {
	plan, err := l.storage.GetLockPlan(lockID)
	if err != nil {
		return domain.BreakQuote{}, err
	}
	return l.engine.BreakQuoteFor(plan, now)
}

// BreakLock settles a maturity-mode lock early. The caller must set
// acknowledged after showing the customer the break quote; without it the
// break is rejected so the loss is never silent. All interest is forfeited
// and the penalty comes out of principal.
func (l *Ledger) BreakLock(ctx context.Context, lockID uuid.UUID, acknowledged bool, now time.Time) (*domain.LockPlan, domain.BreakQuote, error) {
	plan, err := l.storage.GetLockPlan(lockID)
	if err != nil {
		return nil, domain.BreakQuote{}, err
	}
	quote, err := l.engine.BreakQuoteFor(plan, now)
	if err != nil {
		return nil, domain.BreakQuote{}, err
	}
	if !acknowledged {
		return nil, quote, fmt.Errorf("%w: breaking forfeits %s", domain.ErrConfirmationRequired, quote.TotalLoss.StringFixed(2))
	}

	if err := l.wallet.Credit(ctx, plan.CustomerKey, quote.NetReceived); err != nil {
		return nil, domain.BreakQuote{}, fmt.Errorf("break payout credit failed: %w", err)
	}

	plan.Status = domain.LockStatusBroken
	plan.UpdatedAt = now
	if err := l.storage.UpdateLockPlan(plan); err != nil {
		return nil, domain.BreakQuote{}, fmt.Errorf("failed to update lock plan: %w", err)
	}

	l.logger.Info("lock broken",
		zap.String("lock_id", plan.ID.String()),
		zap.String("net_received", quote.NetReceived.StringFixed(2)),
		zap.String("total_loss", quote.TotalLoss.StringFixed(2)))
	return plan, quote, nil
}

// MatureLock settles a lock that has reached its maturity date. Principal is
// returned; maturity-mode locks receive their withheld interest as well.
func (l *Ledger) MatureLock(ctx context.Context, lockID uuid.UUID, now time.Time) (*domain.LockPlan, error) {
	plan, err := l.storage.GetLockPlan(lockID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.LockStatusActive {
		return nil, fmt.Errorf("%w: lock is %s", domain.ErrAlreadySettled, plan.Status)
	}
	if !plan.Matured(now) {
		return nil, fmt.Errorf("%w: lock matures on %s", domain.ErrInvalidParameters, plan.MaturityDate.Format("2006-01-02"))
	}

	payout := plan.Principal
	if plan.InterestMode == domain.InterestModeMaturity {
		payout = payout.Add(plan.AccruedInterest)
	}
	if err := l.wallet.Credit(ctx, plan.CustomerKey, payout); err != nil {
		return nil, fmt.Errorf("maturity payout credit failed: %w", err)
	}

	plan.Status = domain.LockStatusCompleted
	plan.UpdatedAt = now
	if err := l.storage.UpdateLockPlan(plan); err != nil {
		return nil, fmt.Errorf("failed to update lock plan: %w", err)
	}

	l.logger.Info("lock matured",
		zap.String("lock_id", plan.ID.String()),
		zap.String("payout", payout.StringFixed(2)))
	return plan, nil
}

// MatureDueLocks settles every active lock past its maturity date. Run from
// the scheduled sweep; failures on one lock do not stop the rest.
func (l *Ledger) MatureDueLocks(ctx context.Context, now time.Time) (int, error) {
	plans, err := l.storage.ListActiveLockPlans()
	if err != nil {
		return 0, fmt.Errorf("failed to list active locks: %w", err)
	}
	matured := 0
	for _, plan := range plans {
		if !plan.Matured(now) {
			continue
		}
		if _, err := l.MatureLock(ctx, plan.ID, now); err != nil {
			l.logger.Error("lock maturity sweep failed",
				zap.String("lock_id", plan.ID.String()), zap.Error(err))
			continue
		}
		matured++
	}
	return matured, nil
}

// GetLock retrieves a lock plan by id.
func (l *Ledger) GetLock(id uuid.UUID) (*domain.LockPlan, error) {
	return l.storage.GetLockPlan(id)
}
