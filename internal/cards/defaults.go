package cards

import (
	"github.com/shopspring/decimal"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// DefaultCatalog returns the built-in card products seeded on init.
func DefaultCatalog() []model.CardProduct {
	return []model.CardProduct{
		{
			ID:     "atlas-platinum",
			Name:   "Atlas Platinum",
			Issuer: "Atlas Bank",
			Benefits: []model.CardBenefit{
				{
					ID: "atlas-platinum-airline", Name: "Airline Fee Credit",
					Category: "airline", Description: "Incidental airline fee reimbursements",
					Timing: model.TimingAnnually, MaxAmount: decimal.NewFromInt(200), HasCap: true,
					Keywords: []string{"airline", "united", "delta", "american air"}, Active: true,
				},
				{
					ID: "atlas-platinum-uber", Name: "Rideshare Cash",
					Category: "rideshare", Description: "Monthly rideshare and delivery credit",
					Timing: model.TimingMonthly, MaxAmount: decimal.NewFromInt(15), HasCap: true,
					Keywords: []string{"uber", "lyft"}, Active: true,
				},
				{
					ID: "atlas-platinum-streaming", Name: "Streaming Credit",
					Category: "streaming", Description: "Digital entertainment reimbursement",
					Timing: model.TimingMonthly, MaxAmount: decimal.NewFromInt(20), HasCap: true,
					Keywords: []string{"netflix", "hulu", "spotify", "disney"}, Active: true,
				},
			},
		},
		{
			ID:     "atlas-gold",
			Name:   "Atlas Gold",
			Issuer: "Atlas Bank",
			Benefits: []model.CardBenefit{
				{
					ID: "atlas-gold-dining", Name: "Dining Credit",
					Category: "dining", Description: "Monthly dining statement credit",
					Timing: model.TimingMonthly, MaxAmount: decimal.NewFromInt(10), HasCap: true,
					Keywords: []string{"grubhub", "resy", "cheesecake"}, Active: true,
				},
				{
					ID: "atlas-gold-hotel", Name: "Hotel Collection Credit",
					Category: "hotel", Description: "Semiannual hotel property credit",
					Timing: model.TimingSemiAnnually, MaxAmount: decimal.NewFromInt(50), HasCap: true,
					Keywords: []string{"hotel collection"}, Active: true,
				},
			},
		},
	}
}
