package match

import (
	"fmt"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// categoryCatalog is the legacy fallback rule table: merchant category
// tags mapped to the benefit category tags they can satisfy. Loaded
// once; never mutated after init.
var categoryCatalog = map[string][]string{
	"rideshare":      {"travel", "rideshare"},
	"taxi":           {"travel", "rideshare"},
	"food_delivery":  {"dining", "food_delivery"},
	"restaurants":    {"dining"},
	"airlines":       {"travel", "airline"},
	"lodging":        {"travel", "hotel"},
	"streaming":      {"entertainment", "streaming"},
	"fitness":        {"wellness"},
	"supermarkets":   {"grocery"},
	"ground_transit": {"travel"},
}

// evaluateCategory is the fallback path when no keyword rule fires: a
// credit whose merchant category maps to the benefit's category tag
// matches at a lower fixed confidence. Guard rails still apply.
func evaluateCategory(tx model.Transaction, benefit model.CardBenefit) (Match, bool) {
	if !tx.IsCredit() || tx.Category == "" || benefit.Category == "" {
		return Match{}, false
	}

	targets, ok := categoryCatalog[tx.Category]
	if !ok {
		return Match{}, false
	}

	for _, tag := range targets {
		if tag != benefit.Category {
			continue
		}
		if !withinGuardRails(tx.Amount, benefit.Rule) {
			return Match{}, false
		}
		return Match{
			Benefit:    benefit,
			Confidence: categoryConfidence,
			Reason:     fmt.Sprintf("matched category %q for %s", tx.Category, benefit.Name),
		}, true
	}
	return Match{}, false
}
