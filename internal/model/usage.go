package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BenefitUsage is the ledger row accumulating matched credits for one
// (benefit, linked account, accounting period) triple. UsedAmount only
// grows within a period; Remaining is clamped at zero on every write.
type BenefitUsage struct {
	ID          string
	BenefitID   string
	AccountID   string
	PeriodStart time.Time
	PeriodEnd   time.Time // inclusive
	UsedAmount  decimal.Decimal
	MaxAmount   decimal.Decimal
	Capped      bool
	Remaining   decimal.Decimal
}

// Exhausted reports whether a capped benefit has no remaining credit
// in this period. An uncapped benefit is never exhausted.
func (u BenefitUsage) Exhausted() bool {
	return u.Capped && !u.Remaining.IsPositive()
}
