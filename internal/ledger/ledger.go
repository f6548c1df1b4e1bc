package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/laresh1090/pennivault/internal/calculation"
	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/store"
)

// Ledger handles the stateful side of every product: it recomputes quotes
// through the engine, moves money through the wallet and persists the
// resulting entities. Calculation stays in internal/calculation; nothing
// here does arithmetic beyond comparing amounts.
type Ledger struct {
	storage store.Storage
	engine  *calculation.Engine
	wallet  Wallet
	logger  *zap.Logger
}

// NewLedger wires a ledger over a storage backend and a validated engine.
// A nil wallet falls back to NopWallet, a nil logger to zap.NewNop.
func NewLedger(s store.Storage, e *calculation.Engine, w Wallet, logger *zap.Logger) *Ledger {
	if w == nil {
		w = NopWallet{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{storage: s, engine: e, wallet: w, logger: logger}
}

// CreatePurchase opens an installment plan. The breakdown is recomputed from
// the raw inputs rather than taken from the caller, so a tampered quote can
// never be committed. The upfront amount is debited before anything is
// persisted.
func (l *Ledger) CreatePurchase(ctx context.Context, customerKey string, price, upfrontPercent decimal.Decimal, termMonths int, startDate time.Time) (*domain.InstallmentPlan, error) {
	breakdown, err := l.engine.QuoteInstallment(price, upfrontPercent, termMonths)
	if err != nil {
		return nil, err
	}
	ladder, err := l.engine.LadderFor(breakdown, startDate, termMonths)
	if err != nil {
		return nil, err
	}

	if err := l.wallet.Debit(ctx, customerKey, breakdown.UpfrontAmount); err != nil {
		return nil, fmt.Errorf("upfront debit failed: %w", err)
	}

	now := time.Now().UTC()
	plan := &domain.InstallmentPlan{
		ID:          uuid.New(),
		CustomerKey: customerKey,
		Breakdown:   breakdown,
		Payments:    ladder,
		Status:      domain.PlanStatusActive,
		StartDate:   startDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if next := plan.NextPending(); next != nil {
		plan.NextPaymentDueAt = &next.DueDate
	}

	if err := l.storage.CreateInstallmentPlan(plan); err != nil {
		return nil, fmt.Errorf("failed to store installment plan: %w", err)
	}

	l.logger.Info("installment plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("customer", customerKey),
		zap.String("upfront", breakdown.UpfrontAmount.StringFixed(2)),
		zap.Int("payments", breakdown.NumberOfPayments))
	return plan, nil
}

// ApplyPayment settles one ladder entry of an active plan. The amount must
// match the scheduled amount exactly; a retry of an already-paid entry
// returns ErrAlreadyPaid with no state change, and a failed debit leaves the
// plan untouched.
func (l *Ledger) ApplyPayment(ctx context.Context, planID uuid.UUID, paymentNumber int, amount decimal.Decimal, now time.Time) (*domain.InstallmentPlan, error) {
	plan, err := l.storage.GetInstallmentPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, fmt.Errorf("%w: plan is %s", domain.ErrAlreadySettled, plan.Status)
	}

	payment := plan.Payment(paymentNumber)
	if payment == nil {
		return nil, fmt.Errorf("%w: no payment %d on plan", domain.ErrInvalidParameters, paymentNumber)
	}
	if payment.Status == domain.PaymentStatusPaid {
		return nil, domain.ErrAlreadyPaid
	}
	if !amount.Equal(payment.Amount) {
		return nil, fmt.Errorf("%w: got %s, schedule says %s",
			domain.ErrAmountMismatch, amount.StringFixed(2), payment.Amount.StringFixed(2))
	}

	if err := l.wallet.Debit(ctx, plan.CustomerKey, amount); err != nil {
		return nil, fmt.Errorf("installment debit failed: %w", err)
	}

	paidAt := now
	payment.Status = domain.PaymentStatusPaid
	payment.PaidAt = &paidAt
	plan.UpdatedAt = now

	if plan.AllPaid() {
		plan.Status = domain.PlanStatusCompleted
		plan.NextPaymentDueAt = nil
	} else if next := plan.NextPending(); next != nil {
		plan.NextPaymentDueAt = &next.DueDate
	}

	if err := l.storage.UpdateInstallmentPlan(plan); err != nil {
		return nil, fmt.Errorf("failed to update installment plan: %w", err)
	}

	l.logger.Info("installment payment applied",
		zap.String("plan_id", plan.ID.String()),
		zap.Int("payment", paymentNumber),
		zap.String("status", string(plan.Status)))
	return plan, nil
}

// MarkOverduePayments flags pending ladder entries whose due date has
// passed. It never changes plan status; overdue is a display state.
func (l *Ledger) MarkOverduePayments(now time.Time) error {
	plans, err := l.storage.ListActiveInstallmentPlans()
	if err != nil {
		return fmt.Errorf("failed to list active plans: %w", err)
	}
	for _, plan := range plans {
		changed := false
		for i := range plan.Payments {
			p := &plan.Payments[i]
			if p.Status == domain.PaymentStatusPending && now.After(p.DueDate) {
				p.Status = domain.PaymentStatusOverdue
				changed = true
			}
		}
		if !changed {
			continue
		}
		plan.UpdatedAt = now
		if err := l.storage.UpdateInstallmentPlan(plan); err != nil {
			return fmt.Errorf("failed to update plan %s: %w", plan.ID, err)
		}
	}
	return nil
}

// GetPlan retrieves an installment plan by id.
func (l *Ledger) GetPlan(id uuid.UUID) (*domain.InstallmentPlan, error) {
	return l.storage.GetInstallmentPlan(id)
}

// Engine exposes the underlying calculation engine for quote-only paths.
func (l *Ledger) Engine() *calculation.Engine {
	return l.engine
}
