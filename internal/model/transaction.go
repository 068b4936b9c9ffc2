package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one synced bank/card transaction. Negative amounts
// are credits (refunds, statement credits); positive amounts are
// ordinary purchases.
type Transaction struct {
	ID           string
	AccountID    string
	Name         string
	MerchantName string
	Description  string
	Category     string
	Amount       decimal.Decimal
	Date         time.Time
}

// IsCredit reports whether the transaction is a credit/refund, the
// only kind eligible for benefit matching.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsNegative()
}

// TransactionExtended is the 1:1 match-decision annotation for a
// transaction. An empty MatchedBenefitID with a non-empty note marks
// a transaction that was checked and found to match nothing; that
// state is terminal for the backfill scanner.
type TransactionExtended struct {
	TransactionID    string
	MatchedBenefitID string // empty = no match
	Note             string
	UpdatedAt        time.Time
}
