package calculation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/money"
)

// CalculateBreakdown computes the full installment economics for a purchase.
// It is a pure function of its inputs: identical parameters always produce an
// identical breakdown, which is what lets the preview shown at quote time be
// replayed verbatim at settlement time.
func CalculateBreakdown(price, upfrontPercent, markupPercent decimal.Decimal, numberOfPayments int) (domain.PaymentBreakdown, error) {
	if !money.IsPositive(price) {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: price must be positive, got %s", domain.ErrInvalidParameters, price)
	}
	if upfrontPercent.IsNegative() || upfrontPercent.GreaterThan(decimal.NewFromInt(100)) {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: upfront percent must be between 0 and 100, got %s", domain.ErrInvalidParameters, upfrontPercent)
	}
	if markupPercent.IsNegative() {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: markup percent cannot be negative, got %s", domain.ErrInvalidParameters, markupPercent)
	}
	if numberOfPayments < 1 {
		return domain.PaymentBreakdown{}, fmt.Errorf("%w: number of payments must be at least 1, got %d", domain.ErrInvalidParameters, numberOfPayments)
	}

	upfrontAmount := money.Percent(price, upfrontPercent)
	remainingBase := price.Sub(upfrontAmount)

	// A zero markup must produce an exact zero, never a rounding artifact.
	markupAmount := decimal.Zero
	if markupPercent.IsPositive() {
		markupAmount = money.Percent(remainingBase, markupPercent)
	}

	totalRemaining := remainingBase.Add(markupAmount)
	monthlyAmount, roundingAdjustment := money.DivideEvenly(totalRemaining, numberOfPayments)

	return domain.PaymentBreakdown{
		ItemPrice:          price,
		UpfrontAmount:      upfrontAmount,
		RemainingBase:      remainingBase,
		MarkupPercent:      markupPercent,
		MarkupAmount:       markupAmount,
		MonthlyAmount:      monthlyAmount,
		NumberOfPayments:   numberOfPayments,
		TotalCost:          upfrontAmount.Add(totalRemaining),
		RoundingAdjustment: roundingAdjustment,
	}, nil
}

// BuildPaymentLadder generates the immutable payment schedule for a plan:
// dueDate[i] = startDate + i*(termDays/n) for i = 1..n. The rounding
// adjustment is absorbed by the final installment so the ladder reconciles
// exactly with the breakdown's total.
func BuildPaymentLadder(b domain.PaymentBreakdown, startDate time.Time, termDays int) ([]domain.InstallmentPayment, error) {
	if termDays < b.NumberOfPayments {
		return nil, fmt.Errorf("%w: term of %d days cannot carry %d payments", domain.ErrInvalidParameters, termDays, b.NumberOfPayments)
	}

	intervalDays := termDays / b.NumberOfPayments
	payments := make([]domain.InstallmentPayment, b.NumberOfPayments)
	for i := 1; i <= b.NumberOfPayments; i++ {
		amount := b.MonthlyAmount
		if i == b.NumberOfPayments {
			amount = amount.Add(b.RoundingAdjustment)
		}
		payments[i-1] = domain.InstallmentPayment{
			PaymentNumber: i,
			Amount:        amount,
			DueDate:       startDate.AddDate(0, 0, i*intervalDays),
			Status:        domain.PaymentStatusPending,
		}
	}
	return payments, nil
}
