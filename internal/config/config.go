// Package config loads and validates the product catalog: rate tiers,
// installment terms, lock rules and Ajo rotation parameters. Validation is
// fail-fast — a malformed catalog must stop the process at startup, never
// surface at request time.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/laresh1090/pennivault/internal/rates"
)

// TermOption is one vendor-selectable installment term.
type TermOption struct {
	Months        int             `yaml:"months" json:"months"`
	TermDays      int             `yaml:"term_days" json:"term_days"`
	MarkupPercent decimal.Decimal `yaml:"markup_percent" json:"markup_percent"`
}

// InstallmentConfig bounds what vendors may configure per purchase.
type InstallmentConfig struct {
	Terms             []TermOption    `yaml:"terms" json:"terms"`
	MinUpfrontPercent decimal.Decimal `yaml:"min_upfront_percent" json:"min_upfront_percent"`
	MaxUpfrontPercent decimal.Decimal `yaml:"max_upfront_percent" json:"max_upfront_percent"`
}

// LockConfig carries the early-break rules for maturity-mode locks.
type LockConfig struct {
	MinimumHoldingDays  int             `yaml:"minimum_holding_days" json:"minimum_holding_days"`
	BreakPenaltyPercent decimal.Decimal `yaml:"break_penalty_percent" json:"break_penalty_percent"`
}

// AjoConfig carries rotation parameters for group savings.
type AjoConfig struct {
	// PayoutStartFraction positions the first payout within the cycle;
	// 0.5 is the midpoint-turn model.
	PayoutStartFraction decimal.Decimal `yaml:"payout_start_fraction" json:"payout_start_fraction"`
	// VendorRealPercent is the cash share of each payout in vendor-sponsored
	// groups. Vendor-configured, never user-adjustable.
	VendorRealPercent decimal.Decimal `yaml:"vendor_real_percent" json:"vendor_real_percent"`
}

// Config is the full product catalog.
type Config struct {
	RateTiers   []rates.Tier      `yaml:"rate_tiers" json:"rate_tiers"`
	Installment InstallmentConfig `yaml:"installment" json:"installment"`
	Lock        LockConfig        `yaml:"lock" json:"lock"`
	Ajo         AjoConfig         `yaml:"ajo" json:"ajo"`
}

// Load reads and validates a catalog from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in product catalog. It must always validate.
func Default() *Config {
	return &Config{
		RateTiers: []rates.Tier{
			{MinDays: 1, MaxDays: 30, AnnualRatePercent: decimal.NewFromFloat(4.5)},
			{MinDays: 31, MaxDays: 90, AnnualRatePercent: decimal.NewFromFloat(6)},
			{MinDays: 91, MaxDays: 180, AnnualRatePercent: decimal.NewFromFloat(8)},
			{MinDays: 181, MaxDays: 365, AnnualRatePercent: decimal.NewFromFloat(10.5)},
		},
		Installment: InstallmentConfig{
			Terms: []TermOption{
				{Months: 6, TermDays: 180, MarkupPercent: decimal.NewFromInt(5)},
				{Months: 12, TermDays: 360, MarkupPercent: decimal.NewFromInt(9)},
			},
			MinUpfrontPercent: decimal.NewFromInt(20),
			MaxUpfrontPercent: decimal.NewFromInt(60),
		},
		Lock: LockConfig{
			MinimumHoldingDays:  30,
			BreakPenaltyPercent: decimal.NewFromFloat(2.5),
		},
		Ajo: AjoConfig{
			PayoutStartFraction: decimal.NewFromFloat(0.5),
			VendorRealPercent:   decimal.NewFromInt(60),
		},
	}
}

// Validate checks the whole catalog. Any failure is a configuration defect.
func (c *Config) Validate() error {
	if _, err := rates.NewTable(c.RateTiers); err != nil {
		return fmt.Errorf("rate tiers: %w", err)
	}

	if len(c.Installment.Terms) == 0 {
		return fmt.Errorf("installment: at least one term is required")
	}
	seen := make(map[int]bool)
	for i, term := range c.Installment.Terms {
		if term.Months < 1 {
			return fmt.Errorf("installment term %d: months must be positive", i)
		}
		if seen[term.Months] {
			return fmt.Errorf("installment term %d: duplicate %d-month term", i, term.Months)
		}
		seen[term.Months] = true
		if term.TermDays < term.Months {
			return fmt.Errorf("installment term %d: term_days %d too short for %d months", i, term.TermDays, term.Months)
		}
		if term.MarkupPercent.IsNegative() {
			return fmt.Errorf("installment term %d: markup cannot be negative", i)
		}
	}
	if c.Installment.MinUpfrontPercent.IsNegative() ||
		c.Installment.MaxUpfrontPercent.GreaterThan(decimal.NewFromInt(100)) ||
		c.Installment.MinUpfrontPercent.GreaterThan(c.Installment.MaxUpfrontPercent) {
		return fmt.Errorf("installment: upfront bounds must satisfy 0 <= min <= max <= 100")
	}

	if c.Lock.MinimumHoldingDays < 0 {
		return fmt.Errorf("lock: minimum holding days cannot be negative")
	}
	if c.Lock.BreakPenaltyPercent.IsNegative() || c.Lock.BreakPenaltyPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("lock: break penalty must be between 0 and 100 percent")
	}

	if c.Ajo.PayoutStartFraction.IsNegative() || c.Ajo.PayoutStartFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("ajo: payout start fraction must be in [0,1)")
	}
	if c.Ajo.VendorRealPercent.IsNegative() || c.Ajo.VendorRealPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("ajo: vendor real percent must be between 0 and 100")
	}

	return nil
}

// RateTable builds the validated rate resolver for this catalog.
func (c *Config) RateTable() (*rates.Table, error) {
	return rates.NewTable(c.RateTiers)
}

// TermByMonths resolves an installment term option from the catalog.
func (c *Config) TermByMonths(months int) (TermOption, bool) {
	for _, term := range c.Installment.Terms {
		if term.Months == months {
			return term, true
		}
	}
	return TermOption{}, false
}

// WriteExample writes the default catalog to path as a starting point.
func WriteExample(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}
