package match

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// BenefitSource resolves the benefits defined by the card product an
// account is linked to. ok is false when the account has no linked
// product.
type BenefitSource interface {
	BenefitsForAccount(ctx context.Context, accountID string) (benefits []model.CardBenefit, ok bool, err error)
}

// Selector runs the rule evaluator across every active benefit on a
// transaction's linked card product.
type Selector struct {
	source BenefitSource
	log    zerolog.Logger
}

// NewSelector creates a Selector.
func NewSelector(source BenefitSource, log zerolog.Logger) *Selector {
	return &Selector{source: source, log: log}
}

// Select returns every benefit the transaction qualifies for, in
// benefit list order. Index 0 is authoritative for callers that want
// a single winner; list order is the explicit tie-break, there is no
// ranking step. A nil result with a nil error means the transaction
// is ineligible or the account has no linked card product.
func (s *Selector) Select(ctx context.Context, tx model.Transaction) ([]Match, error) {
	if !tx.IsCredit() {
		s.log.Debug().Str("transaction_id", tx.ID).Msg("skipping non-credit transaction")
		return nil, nil
	}

	benefits, ok, err := s.source.BenefitsForAccount(ctx, tx.AccountID)
	if err != nil {
		return nil, fmt.Errorf("resolving benefits for account %s: %w", tx.AccountID, err)
	}
	if !ok {
		s.log.Debug().Str("account_id", tx.AccountID).Msg("account has no linked card product")
		return nil, nil
	}

	var matches []Match
	for _, b := range benefits {
		if !b.Active {
			continue
		}
		if m, hit := Evaluate(tx, b); hit {
			matches = append(matches, m)
			continue
		}
		if m, hit := evaluateCategory(tx, b); hit {
			matches = append(matches, m)
		}
	}
	return matches, nil
}
