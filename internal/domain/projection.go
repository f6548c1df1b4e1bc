package domain

import "github.com/shopspring/decimal"

// Frequency is the cadence of a recurring savings contribution.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// DaysPerInterval returns the calendar-day length of one contribution
// interval. Months are normalized to 30 days for estimation purposes.
func (f Frequency) DaysPerInterval() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyMonthly:
		return 30
	default:
		return 0
	}
}

// GoalProjection is an advisory time-to-target estimate for a recurring
// contribution plan. It drives no scheduled side effect; the authoritative
// payment schedule for purchases is the installment ladder.
type GoalProjection struct {
	ContributionAmount decimal.Decimal `json:"contribution_amount"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	Frequency          Frequency       `json:"frequency"`
	IntervalsNeeded    int64           `json:"intervals_needed"`
	TotalDays          int64           `json:"total_days"`
	ProjectedTotal     decimal.Decimal `json:"projected_total"`
	HumanDuration      string          `json:"human_duration"`
}
