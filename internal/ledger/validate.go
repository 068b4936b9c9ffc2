package ledger

import (
	"fmt"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// ValidationError describes a single invariant violation on a usage row.
type ValidationError struct {
	Invariant   int
	UsageID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.UsageID, e.Description)
}

// ValidateUsage enforces the ledger invariants on a usage row before
// it is written.
func ValidateUsage(u model.BenefitUsage) []ValidationError {
	var errs []ValidationError

	// Invariant 1: used amount is never negative.
	if u.UsedAmount.IsNegative() {
		errs = append(errs, ValidationError{
			Invariant:   1,
			UsageID:     u.ID,
			Description: fmt.Sprintf("used amount %s is negative", u.UsedAmount.StringFixed(2)),
		})
	}

	// Invariant 2: remaining amount is never negative.
	if u.Remaining.IsNegative() {
		errs = append(errs, ValidationError{
			Invariant:   2,
			UsageID:     u.ID,
			Description: fmt.Sprintf("remaining amount %s is negative", u.Remaining.StringFixed(2)),
		})
	}

	// Invariant 3: period bounds are ordered.
	if u.PeriodEnd.Before(u.PeriodStart) {
		errs = append(errs, ValidationError{
			Invariant:   3,
			UsageID:     u.ID,
			Description: fmt.Sprintf("period end %s before start %s", u.PeriodEnd.Format("2006-01-02"), u.PeriodStart.Format("2006-01-02")),
		})
	}

	// Invariant 4: a capped row's remaining never exceeds its cap, and
	// an uncapped row carries zero cap and zero remaining.
	if u.Capped {
		if u.Remaining.GreaterThan(u.MaxAmount) {
			errs = append(errs, ValidationError{
				Invariant:   4,
				UsageID:     u.ID,
				Description: fmt.Sprintf("remaining %s exceeds cap %s", u.Remaining.StringFixed(2), u.MaxAmount.StringFixed(2)),
			})
		}
	} else if !u.MaxAmount.IsZero() || !u.Remaining.IsZero() {
		errs = append(errs, ValidationError{
			Invariant:   4,
			UsageID:     u.ID,
			Description: "uncapped row must carry zero cap and zero remaining",
		})
	}

	return errs
}
