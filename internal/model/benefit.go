package model

import "github.com/shopspring/decimal"

// Timing is the cadence on which a benefit's cap resets.
type Timing string

const (
	TimingMonthly      Timing = "monthly"
	TimingQuarterly    Timing = "quarterly"
	TimingSemiAnnually Timing = "semiannually"
	TimingAnnually     Timing = "annually"
)

// RuleConfig carries optional amount guard rails for a benefit's
// matching rule. Bounds apply to the absolute value of the
// transaction amount.
type RuleConfig struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	HasMin    bool
	HasMax    bool
}

// CardBenefit is a recurring perk defined by a card product: a
// statement credit with a per-period cap, matched against incoming
// credits by keyword.
type CardBenefit struct {
	ID          string
	ProductID   string
	Name        string
	Category    string
	Description string
	Timing      Timing
	// MaxAmount is the per-period cap. HasCap distinguishes an
	// uncapped benefit from one with a true zero-dollar cap.
	MaxAmount decimal.Decimal
	HasCap    bool
	// Keywords are matched case-insensitively as substrings, in
	// order. First keyword that hits wins.
	Keywords []string
	Rule     *RuleConfig
	Position int
	Active   bool
}

// Cap returns the benefit's cap and whether one is set.
func (b CardBenefit) Cap() (decimal.Decimal, bool) {
	if !b.HasCap {
		return decimal.Zero, false
	}
	return b.MaxAmount, true
}
