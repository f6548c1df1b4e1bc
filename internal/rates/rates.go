// Package rates maps lock and financing durations onto tiered annual rates.
// The tier table is product configuration: it must cover its full range with
// no gaps or overlaps and longer durations must never pay less. Violations
// are configuration defects and are rejected at load time, not at request
// time.
package rates

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is one inclusive duration band of the rate table.
type Tier struct {
	MinDays           int             `yaml:"min_days" json:"min_days"`
	MaxDays           int             `yaml:"max_days" json:"max_days"`
	AnnualRatePercent decimal.Decimal `yaml:"annual_rate_percent" json:"annual_rate_percent"`
}

// Table is a validated, ordered tier table.
type Table struct {
	tiers []Tier
}

// NewTable validates the tiers and returns a resolver over them.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("rate table is empty")
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinDays < sorted[j].MinDays })

	for i, tier := range sorted {
		if tier.MinDays <= 0 {
			return nil, fmt.Errorf("tier %d: min_days must be positive, got %d", i, tier.MinDays)
		}
		if tier.MaxDays < tier.MinDays {
			return nil, fmt.Errorf("tier %d: max_days %d is below min_days %d", i, tier.MaxDays, tier.MinDays)
		}
		if tier.AnnualRatePercent.IsNegative() {
			return nil, fmt.Errorf("tier %d: annual rate cannot be negative", i)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if tier.MinDays != prev.MaxDays+1 {
			if tier.MinDays <= prev.MaxDays {
				return nil, fmt.Errorf("tier %d overlaps tier %d (%d-%d vs %d-%d)",
					i, i-1, tier.MinDays, tier.MaxDays, prev.MinDays, prev.MaxDays)
			}
			return nil, fmt.Errorf("gap in rate table between day %d and day %d", prev.MaxDays, tier.MinDays)
		}
		if tier.AnnualRatePercent.LessThan(prev.AnnualRatePercent) {
			return nil, fmt.Errorf("rate table is not monotonic: %d-%d days pays %s%% but %d-%d days pays %s%%",
				tier.MinDays, tier.MaxDays, tier.AnnualRatePercent,
				prev.MinDays, prev.MaxDays, prev.AnnualRatePercent)
		}
	}

	return &Table{tiers: sorted}, nil
}

// RateForDuration resolves the annual rate for a duration by inclusive tier
// match. A duration outside every tier is a configuration error, not a
// user-facing condition.
func (t *Table) RateForDuration(days int) (decimal.Decimal, error) {
	for _, tier := range t.tiers {
		if days >= tier.MinDays && days <= tier.MaxDays {
			return tier.AnnualRatePercent, nil
		}
	}
	return decimal.Zero, fmt.Errorf("no rate tier covers a duration of %d days", days)
}

// Tiers returns the validated tiers in ascending duration order.
func (t *Table) Tiers() []Tier {
	return t.tiers
}

// MinDuration returns the shortest duration the table covers.
func (t *Table) MinDuration() int {
	return t.tiers[0].MinDays
}

// MaxDuration returns the longest duration the table covers.
func (t *Table) MaxDuration() int {
	return t.tiers[len(t.tiers)-1].MaxDays
}
