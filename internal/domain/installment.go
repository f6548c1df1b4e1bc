package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle state of an installment plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// PaymentStatus is the state of a single ladder entry.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// InstallmentParameters are the immutable inputs to an installment quote.
// They are constructed once per quote request and never mutated.
type InstallmentParameters struct {
	Price            decimal.Decimal `json:"price"`
	UpfrontPercent   decimal.Decimal `json:"upfront_percent"`
	MarkupPercent    decimal.Decimal `json:"markup_percent"`
	NumberOfPayments int             `json:"number_of_payments"`
	TermDays         int             `json:"term_days"`
	StartDate        time.Time       `json:"start_date"`
}

// PaymentBreakdown is the immutable result of an installment quote.
//
// Invariant: UpfrontAmount + MonthlyAmount*NumberOfPayments +
// RoundingAdjustment == TotalCost == ItemPrice + MarkupAmount.
type PaymentBreakdown struct {
	ItemPrice          decimal.Decimal `json:"item_price"`
	UpfrontAmount      decimal.Decimal `json:"upfront_amount"`
	RemainingBase      decimal.Decimal `json:"remaining_base"`
	MarkupPercent      decimal.Decimal `json:"markup_percent"`
	MarkupAmount       decimal.Decimal `json:"markup_amount"`
	MonthlyAmount      decimal.Decimal `json:"monthly_amount"`
	NumberOfPayments   int             `json:"number_of_payments"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	RoundingAdjustment decimal.Decimal `json:"rounding_adjustment"`
}

// InstallmentPayment is one rung of a plan's payment ladder. The ladder is
// generated once at purchase time; only Status and PaidAt ever change.
type InstallmentPayment struct {
	PaymentNumber int             `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        PaymentStatus   `json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

// InstallmentPlan is the stateful entity created from a PaymentBreakdown at
// purchase time. It is mutated only by payment application.
type InstallmentPlan struct {
	ID               uuid.UUID            `json:"id"`
	CustomerKey      string               `json:"customer_key"`
	Breakdown        PaymentBreakdown     `json:"breakdown"`
	Payments         []InstallmentPayment `json:"payments"`
	Status           PlanStatus           `json:"status"`
	StartDate        time.Time            `json:"start_date"`
	NextPaymentDueAt *time.Time           `json:"next_payment_due_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Payment returns the ladder entry with the given number, or nil.
func (p *InstallmentPlan) Payment(number int) *InstallmentPayment {
	for i := range p.Payments {
		if p.Payments[i].PaymentNumber == number {
			return &p.Payments[i]
		}
	}
	return nil
}

// AllPaid reports whether every ladder entry has been settled.
func (p *InstallmentPlan) AllPaid() bool {
	for i := range p.Payments {
		if p.Payments[i].Status != PaymentStatusPaid {
			return false
		}
	}
	return true
}

// NextPending returns the earliest unpaid ladder entry, or nil when the
// ladder is fully settled.
func (p *InstallmentPlan) NextPending() *InstallmentPayment {
	for i := range p.Payments {
		if p.Payments[i].Status != PaymentStatusPaid {
			return &p.Payments[i]
		}
	}
	return nil
}
