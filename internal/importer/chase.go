package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// ChaseCardParser parses Chase credit card CSV exports.
type ChaseCardParser struct{}

const (
	chaseDateFormat  = "01/02/2006"
	chaseNumFields   = 7
	chaseColDate     = 0
	chaseColDesc     = 2
	chaseColCategory = 3
	chaseColAmount   = 5
	chaseColMemo     = 6
)

// Format returns the parser name.
func (p *ChaseCardParser) Format() string { return "chase" }

// Parse reads a Chase card CSV and returns Transactions. Chase signs
// purchases negative and credits positive; rows are flipped to the
// credit-negative convention used everywhere else.
func (p *ChaseCardParser) Parse(r io.Reader, accountID string) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := parseChaseRow(rec, accountID)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func parseChaseRow(rec []string, accountID string) (model.Transaction, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	desc := rec[chaseColDesc]
	return model.Transaction{
		ID:          makeChaseID(accountID, date, desc, amount),
		AccountID:   accountID,
		Name:        desc,
		Description: rec[chaseColMemo],
		Category:    normalizeCategory(rec[chaseColCategory]),
		Amount:      amount.Neg(),
		Date:        date,
	}, nil
}

// makeChaseID creates a deterministic ID like
// "chase_acct1_20250103_UBEREATS_-2599" so re-importing the same
// export does not duplicate transactions.
func makeChaseID(accountID string, date time.Time, desc string, amount decimal.Decimal) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s_%s_%s", accountID, date.Format("20060102"), prefix, amount.Shift(2).Round(0))
}

// normalizeCategory maps Chase's category labels onto the merchant
// category tags the match catalog understands.
func normalizeCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "food & drink":
		return "restaurants"
	case "groceries":
		return "supermarkets"
	case "travel":
		return "ground_transit"
	case "entertainment":
		return "streaming"
	default:
		return strings.ToLower(strings.TrimSpace(category))
	}
}
