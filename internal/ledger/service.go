package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/perkwise-dev/perkwise/internal/model"
	"github.com/perkwise-dev/perkwise/internal/period"
)

// CheckedNoMatchNote marks a transaction that was evaluated and
// matched no benefit. The backfill scanner never reselects a
// transaction carrying this note.
const CheckedNoMatchNote = "checked: no matching benefit"

// UsageStore persists benefit usage rows. UpsertUsage must be atomic:
// create the row for (benefit, account, period) if absent, otherwise
// increment its used amount by the candidate's used amount and
// re-clamp remaining at zero. Returns the row as stored.
type UsageStore interface {
	UpsertUsage(ctx context.Context, usage model.BenefitUsage) (model.BenefitUsage, error)
}

// LinkStore persists transaction match annotations keyed by
// transaction ID (create if absent, overwrite fields if present).
type LinkStore interface {
	UpsertExtended(ctx context.Context, ext model.TransactionExtended) (model.TransactionExtended, error)
}

// Service accumulates matched credits against per-period benefit caps
// and records transaction-to-benefit links.
type Service struct {
	usage UsageStore
	links LinkStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a ledger Service.
func NewService(usage UsageStore, links LinkStore, log zerolog.Logger) *Service {
	return &Service{usage: usage, links: links, log: log, now: time.Now}
}

// Apply resolves the accounting period for the transaction date and
// accumulates the transaction's absolute amount against the benefit's
// cap for that period. Remaining is clamped at zero on every write,
// creation and increment alike.
func (s *Service) Apply(ctx context.Context, tx model.Transaction, benefit model.CardBenefit) (model.BenefitUsage, error) {
	p := period.Resolve(benefit.Timing, tx.Date)
	amount := tx.Amount.Abs()
	capAmount, capped := benefit.Cap()

	row := model.BenefitUsage{
		ID:          uuid.NewString(),
		BenefitID:   benefit.ID,
		AccountID:   tx.AccountID,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
		UsedAmount:  amount,
		MaxAmount:   capAmount,
		Capped:      capped,
		Remaining:   clampRemaining(capAmount, amount, capped),
	}

	if verrs := ValidateUsage(row); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return model.BenefitUsage{}, fmt.Errorf("usage validation failed: %s", strings.Join(msgs, "; "))
	}

	stored, err := s.usage.UpsertUsage(ctx, row)
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("upserting usage for benefit %s period %s: %w", benefit.ID, p.Key(), err)
	}

	s.log.Debug().
		Str("benefit_id", benefit.ID).
		Str("account_id", tx.AccountID).
		Str("period", p.Key()).
		Str("used", stored.UsedAmount.StringFixed(2)).
		Str("remaining", stored.Remaining.StringFixed(2)).
		Msg("usage updated")
	return stored, nil
}

// Link records the transaction-to-benefit association and applies the
// usage update as one logical unit. The extended-row upsert is
// idempotent by transaction ID; the usage update is not — the ledger
// increments rather than replaces, so each transaction must be
// submitted at most once. The backfill scanner guarantees this by
// never reselecting a transaction whose extended row already carries
// a matched benefit.
func (s *Service) Link(ctx context.Context, tx model.Transaction, benefit model.CardBenefit, reason string) (model.TransactionExtended, error) {
	ext := model.TransactionExtended{
		TransactionID:    tx.ID,
		MatchedBenefitID: benefit.ID,
		Note:             reason,
		UpdatedAt:        s.now(),
	}
	stored, err := s.links.UpsertExtended(ctx, ext)
	if err != nil {
		return model.TransactionExtended{}, fmt.Errorf("linking transaction %s to benefit %s: %w", tx.ID, benefit.ID, err)
	}

	if _, err := s.Apply(ctx, tx, benefit); err != nil {
		return model.TransactionExtended{}, err
	}
	return stored, nil
}

// MarkChecked records that a transaction was evaluated and matched
// nothing, so scans stop selecting it.
func (s *Service) MarkChecked(ctx context.Context, transactionID string) (model.TransactionExtended, error) {
	ext := model.TransactionExtended{
		TransactionID: transactionID,
		Note:          CheckedNoMatchNote,
		UpdatedAt:     s.now(),
	}
	stored, err := s.links.UpsertExtended(ctx, ext)
	if err != nil {
		return model.TransactionExtended{}, fmt.Errorf("marking transaction %s checked: %w", transactionID, err)
	}
	return stored, nil
}

// clampRemaining computes max(0, cap - used). Uncapped benefits carry
// zero remaining; callers distinguish them via Capped.
func clampRemaining(capAmount, used decimal.Decimal, capped bool) decimal.Decimal {
	if !capped {
		return decimal.Zero
	}
	remaining := capAmount.Sub(used)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
