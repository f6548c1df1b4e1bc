package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/laresh1090/pennivault/internal/domain"
	"github.com/laresh1090/pennivault/internal/money"
)

// ProjectGoal estimates how long a recurring-contribution plan needs to reach
// its target. The estimate is advisory: it drives no schedule and no side
// effect, unlike the installment ladder which is authoritative.
func ProjectGoal(contribution, target decimal.Decimal, frequency domain.Frequency) (domain.GoalProjection, error) {
	if !money.IsPositive(contribution) {
		return domain.GoalProjection{}, fmt.Errorf("%w: contribution must be positive, got %s", domain.ErrInvalidParameters, contribution)
	}
	if !money.IsPositive(target) {
		return domain.GoalProjection{}, fmt.Errorf("%w: target must be positive, got %s", domain.ErrInvalidParameters, target)
	}
	daysPerInterval := frequency.DaysPerInterval()
	if daysPerInterval == 0 {
		return domain.GoalProjection{}, fmt.Errorf("%w: unknown frequency %q", domain.ErrInvalidParameters, frequency)
	}

	intervals := target.Div(contribution).Ceil().IntPart()
	totalDays := intervals * int64(daysPerInterval)

	return domain.GoalProjection{
		ContributionAmount: contribution,
		TargetAmount:       target,
		Frequency:          frequency,
		IntervalsNeeded:    intervals,
		TotalDays:          totalDays,
		ProjectedTotal:     contribution.Mul(decimal.NewFromInt(intervals)),
		HumanDuration:      HumanizeDays(totalDays),
	}, nil
}

// HumanizeDays renders a day count at human scale: days under a month,
// months under a year, then years and months.
func HumanizeDays(days int64) string {
	switch {
	case days < 1:
		return "less than a day"
	case days == 1:
		return "1 day"
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		months := days / 30
		rem := days % 30
		if rem == 0 {
			return plural(months, "month")
		}
		return fmt.Sprintf("%s, %s", plural(months, "month"), plural(rem, "day"))
	default:
		years := days / 365
		months := (days % 365) / 30
		if months == 0 {
			return plural(years, "year")
		}
		return fmt.Sprintf("%s, %s", plural(years, "year"), plural(months, "month"))
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
