package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perkwise-dev/perkwise/internal/model"
)

func validUsage() model.BenefitUsage {
	return model.BenefitUsage{
		ID: "u1", BenefitID: "ben-uber", AccountID: "acct-1",
		PeriodStart: date(2024, time.January, 1),
		PeriodEnd:   date(2024, time.December, 31),
		UsedAmount:  dec("100"),
		MaxAmount:   dec("300"),
		Capped:      true,
		Remaining:   dec("200"),
	}
}

func TestValidateUsage_Valid(t *testing.T) {
	assert.Empty(t, ValidateUsage(validUsage()))
}

func TestValidateUsage_NegativeUsed(t *testing.T) {
	u := validUsage()
	u.UsedAmount = dec("-5")
	errs := ValidateUsage(u)
	require.NotEmpty(t, errs)
	assert.Equal(t, 1, errs[0].Invariant)
}

func TestValidateUsage_NegativeRemaining(t *testing.T) {
	u := validUsage()
	u.Remaining = dec("-0.01")
	errs := ValidateUsage(u)
	require.NotEmpty(t, errs)
	assert.Equal(t, 2, errs[0].Invariant)
	assert.Contains(t, errs[0].Error(), "remaining amount")
}

func TestValidateUsage_InvertedPeriod(t *testing.T) {
	u := validUsage()
	u.PeriodEnd = date(2023, time.December, 31)
	errs := ValidateUsage(u)
	require.NotEmpty(t, errs)
	assert.Equal(t, 3, errs[0].Invariant)
}

func TestValidateUsage_RemainingExceedsCap(t *testing.T) {
	u := validUsage()
	u.Remaining = dec("301")
	errs := ValidateUsage(u)
	require.NotEmpty(t, errs)
	assert.Equal(t, 4, errs[0].Invariant)
}

func TestValidateUsage_UncappedCarriesZeroes(t *testing.T) {
	u := validUsage()
	u.Capped = false
	u.MaxAmount = decimal.Zero
	u.Remaining = decimal.Zero
	assert.Empty(t, ValidateUsage(u))

	u.Remaining = dec("10")
	errs := ValidateUsage(u)
	require.NotEmpty(t, errs)
	assert.Equal(t, 4, errs[0].Invariant)
}
