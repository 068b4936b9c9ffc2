package scan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/perkwise-dev/perkwise/internal/match"
	"github.com/perkwise-dev/perkwise/internal/model"
)

// DefaultBatchLimit bounds a single backfill run.
const DefaultBatchLimit = 500

// MatchSelector decides which benefits a transaction qualifies for.
type MatchSelector interface {
	Select(ctx context.Context, tx model.Transaction) ([]match.Match, error)
}

// Recorder persists match decisions: Link for a winning benefit,
// MarkChecked for a transaction that matched nothing.
type Recorder interface {
	Link(ctx context.Context, tx model.Transaction, benefit model.CardBenefit, reason string) (model.TransactionExtended, error)
	MarkChecked(ctx context.Context, transactionID string) (model.TransactionExtended, error)
}

// TransactionSource reads transactions that have no match decision
// yet: no extended row, or one with no matched benefit. Results are
// date-ordered and capped at limit. Scoping is by owning user, or by
// an explicit account-ID list when given.
type TransactionSource interface {
	UnmatchedTransactions(ctx context.Context, userID string, accountIDs []string, limit int) ([]model.Transaction, error)
}

// Trigger is the real-time match path: one transaction, one
// synchronous decision. Invoked per newly-synced transaction.
type Trigger struct {
	selector MatchSelector
	recorder Recorder
}

// NewTrigger creates a Trigger.
func NewTrigger(selector MatchSelector, recorder Recorder) *Trigger {
	return &Trigger{selector: selector, recorder: recorder}
}

// Process evaluates one transaction and records the outcome. The
// first match in list order wins. Returns true when a benefit was
// linked. Every evaluated transaction ends up with an extended row,
// matched or not.
func (t *Trigger) Process(ctx context.Context, tx model.Transaction) (bool, error) {
	matches, err := t.selector.Select(ctx, tx)
	if err != nil {
		return false, err
	}

	if len(matches) == 0 {
		if _, err := t.recorder.MarkChecked(ctx, tx.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	best := matches[0]
	if _, err := t.recorder.Link(ctx, tx, best.Benefit, best.Reason); err != nil {
		return false, err
	}
	return true, nil
}

// Result summarizes one backfill run. It is advisory: per-transaction
// commits are independent, so a crash mid-batch simply shrinks the
// next run's candidate set.
type Result struct {
	Matched int
	Checked int
}

// Scanner is the backfill job over historical transactions.
type Scanner struct {
	source  TransactionSource
	trigger *Trigger
	log     zerolog.Logger
	limit   int
}

// NewScanner creates a Scanner with the given per-run batch limit.
// A non-positive limit falls back to DefaultBatchLimit.
func NewScanner(source TransactionSource, trigger *Trigger, log zerolog.Logger, limit int) *Scanner {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	return &Scanner{source: source, trigger: trigger, log: log, limit: limit}
}

// Scan selects transactions with no match decision for the user (or
// the explicit account list), runs the match trigger over each, and
// returns matched/checked counts. Per-transaction failures are logged
// and skipped; the transaction stays unmatched and is retried on the
// next run. Failure to obtain the candidate set propagates.
func (s *Scanner) Scan(ctx context.Context, userID string, accountIDs []string) (Result, error) {
	candidates, err := s.source.UnmatchedTransactions(ctx, userID, accountIDs, s.limit)
	if err != nil {
		return Result{}, fmt.Errorf("selecting unmatched transactions: %w", err)
	}
	candidates = dedupeByID(candidates)

	var result Result
	for _, tx := range candidates {
		result.Checked++

		matched, err := s.trigger.Process(ctx, tx)
		if err != nil {
			s.log.Error().Err(err).
				Str("transaction_id", tx.ID).
				Msg("skipping transaction after processing failure")
			continue
		}
		if matched {
			result.Matched++
		}
	}

	s.log.Info().
		Str("user_id", userID).
		Int("matched", result.Matched).
		Int("checked", result.Checked).
		Msg("backfill scan complete")
	return result, nil
}

// dedupeByID drops duplicate candidates, preserving first-seen order.
// The unmatched selection unions two predicates and can yield the
// same transaction twice.
func dedupeByID(txs []model.Transaction) []model.Transaction {
	seen := make(map[string]bool, len(txs))
	out := txs[:0]
	for _, tx := range txs {
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		out = append(out, tx)
	}
	return out
}
