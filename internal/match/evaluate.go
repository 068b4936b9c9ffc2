package match

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// Confidence values are fixed per rule kind, not computed.
var (
	keywordConfidence  = decimal.NewFromFloat(0.95)
	categoryConfidence = decimal.NewFromFloat(0.60)
)

// Match is one benefit a transaction qualifies for.
type Match struct {
	Benefit    model.CardBenefit
	Confidence decimal.Decimal
	Reason     string
}

// Evaluate decides whether a single transaction satisfies a single
// benefit's matching rule. Only credits (negative amounts) are
// eligible. Keywords are checked in list order against the lowercased
// merchant name (falling back to the display name) and, separately,
// the raw description; the first keyword that hits wins. Optional
// guard rails bound the absolute amount.
func Evaluate(tx model.Transaction, benefit model.CardBenefit) (Match, bool) {
	if !tx.IsCredit() {
		return Match{}, false
	}

	haystack := tx.MerchantName
	if haystack == "" {
		haystack = tx.Name
	}
	haystack = strings.ToLower(haystack)
	description := strings.ToLower(tx.Description)

	var hit string
	for _, kw := range benefit.Keywords {
		needle := strings.ToLower(kw)
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) || strings.Contains(description, needle) {
			hit = kw
			break
		}
	}
	if hit == "" {
		return Match{}, false
	}

	if !withinGuardRails(tx.Amount, benefit.Rule) {
		return Match{}, false
	}

	return Match{
		Benefit:    benefit,
		Confidence: keywordConfidence,
		Reason:     fmt.Sprintf("matched keyword %q for %s", hit, benefit.Name),
	}, true
}

// withinGuardRails checks the optional min/max bounds against the
// absolute transaction amount. A nil rule imposes no bounds.
func withinGuardRails(amount decimal.Decimal, rule *model.RuleConfig) bool {
	if rule == nil {
		return true
	}
	abs := amount.Abs()
	if rule.HasMin && abs.LessThan(rule.MinAmount) {
		return false
	}
	if rule.HasMax && abs.GreaterThan(rule.MaxAmount) {
		return false
	}
	return true
}
