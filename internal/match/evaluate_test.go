package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perkwise-dev/perkwise/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func uberBenefit() model.CardBenefit {
	return model.CardBenefit{
		ID:        "ben-uber",
		Name:      "Uber Cash",
		Category:  "rideshare",
		Timing:    model.TimingAnnually,
		MaxAmount: dec("300"),
		HasCap:    true,
		Keywords:  []string{"uber"},
		Active:    true,
	}
}

func TestEvaluate_SignGate(t *testing.T) {
	// Positive amounts never match, regardless of keyword content.
	tx := model.Transaction{ID: "t1", MerchantName: "UBER", Amount: dec("45.00")}
	_, hit := Evaluate(tx, uberBenefit())
	assert.False(t, hit)

	zero := model.Transaction{ID: "t2", MerchantName: "UBER", Amount: decimal.Zero}
	_, hit = Evaluate(zero, uberBenefit())
	assert.False(t, hit)
}

func TestEvaluate_KeywordInMerchantName(t *testing.T) {
	tx := model.Transaction{ID: "t1", MerchantName: "UBER EATS", Amount: dec("-150")}
	m, hit := Evaluate(tx, uberBenefit())
	require.True(t, hit)
	assert.Equal(t, "ben-uber", m.Benefit.ID)
	assert.Contains(t, m.Reason, `"uber"`)
	assert.True(t, m.Confidence.Equal(keywordConfidence))
}

func TestEvaluate_FallsBackToDisplayName(t *testing.T) {
	tx := model.Transaction{ID: "t1", Name: "Uber Trip Credit", Amount: dec("-10")}
	_, hit := Evaluate(tx, uberBenefit())
	assert.True(t, hit)
}

func TestEvaluate_KeywordInDescription(t *testing.T) {
	// Merchant name misses but the raw description contains the keyword.
	tx := model.Transaction{
		ID:           "t1",
		MerchantName: "SQ *COFFEE",
		Description:  "UBER TECHNOLOGIES STATEMENT CREDIT",
		Amount:       dec("-25"),
	}
	_, hit := Evaluate(tx, uberBenefit())
	assert.True(t, hit)
}

func TestEvaluate_KeywordOrderIsTieBreak(t *testing.T) {
	b := uberBenefit()
	b.Keywords = []string{"eats", "uber"}
	tx := model.Transaction{ID: "t1", MerchantName: "UBER EATS", Amount: dec("-20")}
	m, hit := Evaluate(tx, b)
	require.True(t, hit)
	assert.Contains(t, m.Reason, `"eats"`, "first keyword in list order wins")
}

func TestEvaluate_GuardRails(t *testing.T) {
	b := model.CardBenefit{
		ID:       "ben-dd",
		Name:     "Monthly Dining Credit",
		Timing:   model.TimingMonthly,
		Keywords: []string{"doordash"},
		Rule: &model.RuleConfig{
			MinAmount: dec("12.00"), HasMin: true,
			MaxAmount: dec("16.00"), HasMax: true,
		},
		Active: true,
	}

	tests := []struct {
		amount string
		want   bool
	}{
		{"-12.95", true},
		{"-12.00", true},
		{"-16.00", true},
		{"-5.00", false},
		{"-20.00", false},
	}
	for _, tt := range tests {
		tx := model.Transaction{ID: "t1", MerchantName: "DOORDASH", Amount: dec(tt.amount)}
		_, hit := Evaluate(tx, b)
		assert.Equal(t, tt.want, hit, "amount %s", tt.amount)
	}
}

func TestEvaluate_MinOnlyGuardRail(t *testing.T) {
	b := uberBenefit()
	b.Rule = &model.RuleConfig{MinAmount: dec("50"), HasMin: true}

	_, hit := Evaluate(model.Transaction{MerchantName: "UBER", Amount: dec("-49.99")}, b)
	assert.False(t, hit)
	_, hit = Evaluate(model.Transaction{MerchantName: "UBER", Amount: dec("-50.00")}, b)
	assert.True(t, hit)
}

func TestEvaluate_NoKeywordHit(t *testing.T) {
	tx := model.Transaction{ID: "t1", MerchantName: "LYFT", Amount: dec("-30")}
	_, hit := Evaluate(tx, uberBenefit())
	assert.False(t, hit)
}

func TestEvaluateCategory_Fallback(t *testing.T) {
	b := uberBenefit()
	tx := model.Transaction{ID: "t1", MerchantName: "CITY CAB CO", Category: "taxi", Amount: dec("-18")}

	// No keyword hit, but the category catalog maps taxi -> rideshare.
	_, hit := Evaluate(tx, b)
	require.False(t, hit)

	m, hit := evaluateCategory(tx, b)
	require.True(t, hit)
	assert.True(t, m.Confidence.Equal(categoryConfidence))
	assert.Contains(t, m.Reason, `"taxi"`)
}

func TestEvaluateCategory_RespectsGuardRails(t *testing.T) {
	b := uberBenefit()
	b.Rule = &model.RuleConfig{MaxAmount: dec("10"), HasMax: true}
	tx := model.Transaction{ID: "t1", Category: "taxi", Amount: dec("-18")}
	_, hit := evaluateCategory(tx, b)
	assert.False(t, hit)
}

func TestEvaluateCategory_SignGate(t *testing.T) {
	tx := model.Transaction{ID: "t1", Category: "taxi", Amount: dec("18")}
	_, hit := evaluateCategory(tx, uberBenefit())
	assert.False(t, hit)
}
