// Package store provides the SQLite-backed storage layer. It
// implements the consumer-side interfaces of the match, ledger, scan,
// cards, and importer packages.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/perkwise-dev/perkwise/internal/model"
)

const (
	dateFormat     = "2006-01-02"
	datetimeFormat = time.RFC3339
)

// Store wraps a SQLite database. Money is stored as integer cents so
// usage increments are SQL-side arithmetic rather than read-modify-
// write round trips.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the
// schema. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS card_products (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		issuer TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS card_benefits (
		id               TEXT PRIMARY KEY,
		product_id       TEXT NOT NULL REFERENCES card_products(id),
		name             TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		timing           TEXT NOT NULL,
		max_amount_cents INTEGER NOT NULL DEFAULT 0,
		has_cap          INTEGER NOT NULL DEFAULT 0,
		keywords         TEXT NOT NULL,
		rule_min_cents   INTEGER,
		rule_max_cents   INTEGER,
		position         INTEGER NOT NULL DEFAULT 0,
		active           INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_benefits_product ON card_benefits(product_id, position);

	CREATE TABLE IF NOT EXISTS linked_accounts (
		account_id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES card_products(id),
		user_id    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_linked_accounts_user ON linked_accounts(user_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id            TEXT PRIMARY KEY,
		account_id    TEXT NOT NULL,
		name          TEXT NOT NULL,
		merchant_name TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		amount_cents  INTEGER NOT NULL,
		date          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date);

	CREATE TABLE IF NOT EXISTS transaction_extended (
		transaction_id     TEXT PRIMARY KEY,
		matched_benefit_id TEXT,
		note               TEXT NOT NULL DEFAULT '',
		updated_at         TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS benefit_usages (
		id              TEXT PRIMARY KEY,
		benefit_id      TEXT NOT NULL REFERENCES card_benefits(id),
		account_id      TEXT NOT NULL,
		period_start    TEXT NOT NULL,
		period_end      TEXT NOT NULL,
		used_cents      INTEGER NOT NULL,
		max_cents       INTEGER NOT NULL,
		capped          INTEGER NOT NULL,
		remaining_cents INTEGER NOT NULL,
		UNIQUE(benefit_id, account_id, period_start)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// toCents converts a 2-decimal money value to integer cents.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// fromCents converts integer cents back to a decimal money value.
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// SaveProduct upserts a card product and its benefit definitions.
// Benefit list order is persisted as the position column; it is the
// match tie-break.
func (s *Store) SaveProduct(ctx context.Context, p model.CardProduct) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO card_products (id, name, issuer) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, issuer = excluded.issuer`,
		p.ID, p.Name, p.Issuer)
	if err != nil {
		return fmt.Errorf("upserting product %s: %w", p.ID, err)
	}

	for i, b := range p.Benefits {
		keywords, err := json.Marshal(b.Keywords)
		if err != nil {
			return fmt.Errorf("encoding keywords for benefit %s: %w", b.ID, err)
		}
		var ruleMin, ruleMax interface{}
		if b.Rule != nil {
			if b.Rule.HasMin {
				ruleMin = toCents(b.Rule.MinAmount)
			}
			if b.Rule.HasMax {
				ruleMax = toCents(b.Rule.MaxAmount)
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO card_benefits
				(id, product_id, name, category, description, timing,
				 max_amount_cents, has_cap, keywords, rule_min_cents, rule_max_cents, position, active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, category = excluded.category,
				description = excluded.description, timing = excluded.timing,
				max_amount_cents = excluded.max_amount_cents, has_cap = excluded.has_cap,
				keywords = excluded.keywords, rule_min_cents = excluded.rule_min_cents,
				rule_max_cents = excluded.rule_max_cents, position = excluded.position,
				active = excluded.active`,
			b.ID, p.ID, b.Name, b.Category, b.Description, string(b.Timing),
			toCents(b.MaxAmount), boolInt(b.HasCap), string(keywords), ruleMin, ruleMax, i, boolInt(b.Active))
		if err != nil {
			return fmt.Errorf("upserting benefit %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing product %s: %w", p.ID, err)
	}
	return nil
}

// Products returns every card product with its benefits in position
// order.
func (s *Store) Products(ctx context.Context) ([]model.CardProduct, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, issuer FROM card_products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []model.CardProduct
	for rows.Next() {
		var p model.CardProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Issuer); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}

	for i := range products {
		benefits, err := s.benefitsForProduct(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Benefits = benefits
	}
	return products, nil
}

const benefitColumns = `id, product_id, name, category, description, timing,
	max_amount_cents, has_cap, keywords, rule_min_cents, rule_max_cents, position, active`

func (s *Store) benefitsForProduct(ctx context.Context, productID string) ([]model.CardBenefit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+benefitColumns+` FROM card_benefits WHERE product_id = ? ORDER BY position`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("querying benefits for product %s: %w", productID, err)
	}
	defer rows.Close()
	return scanBenefits(rows)
}

func scanBenefits(rows *sql.Rows) ([]model.CardBenefit, error) {
	var benefits []model.CardBenefit
	for rows.Next() {
		var (
			benefit          model.CardBenefit
			timing           string
			keywords         string
			maxCents         int64
			hasCap, active   int
			ruleMin, ruleMax sql.NullInt64
		)
		if err := rows.Scan(&benefit.ID, &benefit.ProductID, &benefit.Name, &benefit.Category,
			&benefit.Description, &timing, &maxCents, &hasCap, &keywords,
			&ruleMin, &ruleMax, &benefit.Position, &active); err != nil {
			return nil, fmt.Errorf("scanning benefit: %w", err)
		}
		benefit.Timing = model.Timing(timing)
		benefit.MaxAmount = fromCents(maxCents)
		benefit.HasCap = hasCap != 0
		benefit.Active = active != 0
		if err := json.Unmarshal([]byte(keywords), &benefit.Keywords); err != nil {
			return nil, fmt.Errorf("decoding keywords for benefit %s: %w", benefit.ID, err)
		}
		if ruleMin.Valid || ruleMax.Valid {
			rule := &model.RuleConfig{}
			if ruleMin.Valid {
				rule.MinAmount = fromCents(ruleMin.Int64)
				rule.HasMin = true
			}
			if ruleMax.Valid {
				rule.MaxAmount = fromCents(ruleMax.Int64)
				rule.HasMax = true
			}
			benefit.Rule = rule
		}
		benefits = append(benefits, benefit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading benefits: %w", err)
	}
	return benefits, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LinkAccount associates an account with a card product for a user.
func (s *Store) LinkAccount(ctx context.Context, link model.LinkedAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO linked_accounts (account_id, product_id, user_id) VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET product_id = excluded.product_id, user_id = excluded.user_id`,
		link.AccountID, link.ProductID, link.UserID)
	if err != nil {
		return fmt.Errorf("linking account %s: %w", link.AccountID, err)
	}
	return nil
}

// LinkedAccounts returns every account link for a user.
func (s *Store) LinkedAccounts(ctx context.Context, userID string) ([]model.LinkedAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, product_id, user_id FROM linked_accounts WHERE user_id = ? ORDER BY account_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying linked accounts: %w", err)
	}
	defer rows.Close()

	var links []model.LinkedAccount
	for rows.Next() {
		var l model.LinkedAccount
		if err := rows.Scan(&l.AccountID, &l.ProductID, &l.UserID); err != nil {
			return nil, fmt.Errorf("scanning linked account: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// BenefitsForAccount resolves the benefits of the card product an
// account is linked to, in position order. ok is false when the
// account has no linked product.
func (s *Store) BenefitsForAccount(ctx context.Context, accountID string) ([]model.CardBenefit, bool, error) {
	var productID string
	err := s.db.QueryRowContext(ctx,
		`SELECT product_id FROM linked_accounts WHERE account_id = ?`, accountID).Scan(&productID)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resolving product for account %s: %w", accountID, err)
	}

	benefits, err := s.benefitsForProduct(ctx, productID)
	if err != nil {
		return nil, false, err
	}
	return benefits, true, nil
}

// SaveTransaction upserts a synced transaction by ID.
func (s *Store) SaveTransaction(ctx context.Context, t model.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, name, merchant_name, description, category, amount_cents, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id, name = excluded.name,
			merchant_name = excluded.merchant_name, description = excluded.description,
			category = excluded.category, amount_cents = excluded.amount_cents, date = excluded.date`,
		t.ID, t.AccountID, t.Name, t.MerchantName, t.Description, t.Category,
		toCents(t.Amount), t.Date.Format(dateFormat))
	if err != nil {
		return fmt.Errorf("saving transaction %s: %w", t.ID, err)
	}
	return nil
}

const transactionColumns = `t.id, t.account_id, t.name, t.merchant_name, t.description, t.category, t.amount_cents, t.date`

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var txs []model.Transaction
	for rows.Next() {
		var (
			t     model.Transaction
			cents int64
			date  string
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Name, &t.MerchantName,
			&t.Description, &t.Category, &cents, &date); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		parsed, err := time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parsing transaction date %q: %w", date, err)
		}
		t.Amount = fromCents(cents)
		t.Date = parsed
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UnmatchedTransactions selects transactions with no match decision:
// no extended row, or an extended row with no matched benefit and no
// checked marker. A single OR query avoids the duplicate-candidate
// union. Scope is the explicit account list when given, otherwise
// every account linked by the user. Date-ordered, capped at limit.
func (s *Store) UnmatchedTransactions(ctx context.Context, userID string, accountIDs []string, limit int) ([]model.Transaction, error) {
	var (
		scopeClause string
		args        []interface{}
	)
	if len(accountIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(accountIDs)), ",")
		scopeClause = `t.account_id IN (` + placeholders + `)`
		for _, id := range accountIDs {
			args = append(args, id)
		}
	} else {
		scopeClause = `t.account_id IN (SELECT account_id FROM linked_accounts WHERE user_id = ?)`
		args = append(args, userID)
	}
	args = append(args, limit)

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN transaction_extended e ON e.transaction_id = t.id
		WHERE ` + scopeClause + `
		  AND (e.transaction_id IS NULL OR (e.matched_benefit_id IS NULL AND e.note = ''))
		ORDER BY t.date, t.id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying unmatched transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// UpsertExtended creates or overwrites the match annotation for a
// transaction. The row is keyed by transaction ID, which is what
// makes repeated backfill runs idempotent for the link half.
func (s *Store) UpsertExtended(ctx context.Context, ext model.TransactionExtended) (model.TransactionExtended, error) {
	var benefitID interface{}
	if ext.MatchedBenefitID != "" {
		benefitID = ext.MatchedBenefitID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transaction_extended (transaction_id, matched_benefit_id, note, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			matched_benefit_id = excluded.matched_benefit_id,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		ext.TransactionID, benefitID, ext.Note, ext.UpdatedAt.Format(datetimeFormat))
	if err != nil {
		return model.TransactionExtended{}, fmt.Errorf("upserting extended row for %s: %w", ext.TransactionID, err)
	}
	return ext, nil
}

// GetExtended returns the match annotation for a transaction, or
// ok=false when none exists.
func (s *Store) GetExtended(ctx context.Context, transactionID string) (model.TransactionExtended, bool, error) {
	var (
		ext       model.TransactionExtended
		benefitID sql.NullString
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, matched_benefit_id, note, updated_at
		FROM transaction_extended WHERE transaction_id = ?`, transactionID).
		Scan(&ext.TransactionID, &benefitID, &ext.Note, &updatedAt)
	if err == sql.ErrNoRows {
		return model.TransactionExtended{}, false, nil
	}
	if err != nil {
		return model.TransactionExtended{}, false, fmt.Errorf("querying extended row for %s: %w", transactionID, err)
	}
	ext.MatchedBenefitID = benefitID.String
	parsed, err := time.Parse(datetimeFormat, updatedAt)
	if err != nil {
		return model.TransactionExtended{}, false, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	ext.UpdatedAt = parsed
	return ext, true, nil
}

// UpsertUsage atomically creates the usage row for the candidate's
// (benefit, account, period) key or increments an existing one. The
// increment and the remaining clamp happen in SQL, so concurrent
// ingestion cannot lose updates. Returns the row as stored.
func (s *Store) UpsertUsage(ctx context.Context, u model.BenefitUsage) (model.BenefitUsage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("beginning usage transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO benefit_usages
			(id, benefit_id, account_id, period_start, period_end,
			 used_cents, max_cents, capped, remaining_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(benefit_id, account_id, period_start) DO UPDATE SET
			used_cents = used_cents + excluded.used_cents,
			remaining_cents = CASE
				WHEN capped != 0 THEN MAX(0, max_cents - (used_cents + excluded.used_cents))
				ELSE 0
			END`,
		u.ID, u.BenefitID, u.AccountID,
		u.PeriodStart.Format(dateFormat), u.PeriodEnd.Format(dateFormat),
		toCents(u.UsedAmount), toCents(u.MaxAmount), boolInt(u.Capped),
		toCents(u.Remaining))
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("upserting usage for benefit %s: %w", u.BenefitID, err)
	}

	stored, err := readUsage(ctx, tx, u.BenefitID, u.AccountID, u.PeriodStart)
	if err != nil {
		return model.BenefitUsage{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.BenefitUsage{}, fmt.Errorf("committing usage for benefit %s: %w", u.BenefitID, err)
	}
	return stored, nil
}

func readUsage(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}, benefitID, accountID string, periodStart time.Time) (model.BenefitUsage, error) {
	var (
		u                             model.BenefitUsage
		start, end                    string
		usedCents, maxCents, remCents int64
		capped                        int
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, benefit_id, account_id, period_start, period_end,
		       used_cents, max_cents, capped, remaining_cents
		FROM benefit_usages
		WHERE benefit_id = ? AND account_id = ? AND period_start = ?`,
		benefitID, accountID, periodStart.Format(dateFormat)).
		Scan(&u.ID, &u.BenefitID, &u.AccountID, &start, &end,
			&usedCents, &maxCents, &capped, &remCents)
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("reading usage for benefit %s: %w", benefitID, err)
	}

	u.PeriodStart, err = time.Parse(dateFormat, start)
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("parsing period start %q: %w", start, err)
	}
	u.PeriodEnd, err = time.Parse(dateFormat, end)
	if err != nil {
		return model.BenefitUsage{}, fmt.Errorf("parsing period end %q: %w", end, err)
	}
	u.UsedAmount = fromCents(usedCents)
	u.MaxAmount = fromCents(maxCents)
	u.Capped = capped != 0
	u.Remaining = fromCents(remCents)
	return u, nil
}

// UsageFor returns the usage row whose period covers date for the
// (benefit, account) pair, or ok=false when none exists yet.
func (s *Store) UsageFor(ctx context.Context, benefitID, accountID string, date time.Time) (model.BenefitUsage, bool, error) {
	day := date.Format(dateFormat)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, benefit_id, account_id, period_start, period_end,
		       used_cents, max_cents, capped, remaining_cents
		FROM benefit_usages
		WHERE benefit_id = ? AND account_id = ? AND period_start <= ? AND period_end >= ?`,
		benefitID, accountID, day, day)
	if err != nil {
		return model.BenefitUsage{}, false, fmt.Errorf("querying usage for benefit %s: %w", benefitID, err)
	}
	defer rows.Close()

	usages, err := scanUsages(rows)
	if err != nil {
		return model.BenefitUsage{}, false, err
	}
	if len(usages) == 0 {
		return model.BenefitUsage{}, false, nil
	}
	return usages[0], true, nil
}

// UsagesForAccount returns every usage row for an account, newest
// period first.
func (s *Store) UsagesForAccount(ctx context.Context, accountID string) ([]model.BenefitUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, benefit_id, account_id, period_start, period_end,
		       used_cents, max_cents, capped, remaining_cents
		FROM benefit_usages
		WHERE account_id = ?
		ORDER BY period_start DESC, benefit_id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying usages for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return scanUsages(rows)
}

func scanUsages(rows *sql.Rows) ([]model.BenefitUsage, error) {
	var usages []model.BenefitUsage
	for rows.Next() {
		var (
			u                             model.BenefitUsage
			start, end                    string
			usedCents, maxCents, remCents int64
			capped                        int
		)
		if err := rows.Scan(&u.ID, &u.BenefitID, &u.AccountID, &start, &end,
			&usedCents, &maxCents, &capped, &remCents); err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		var err error
		u.PeriodStart, err = time.Parse(dateFormat, start)
		if err != nil {
			return nil, fmt.Errorf("parsing period start %q: %w", start, err)
		}
		u.PeriodEnd, err = time.Parse(dateFormat, end)
		if err != nil {
			return nil, fmt.Errorf("parsing period end %q: %w", end, err)
		}
		u.UsedAmount = fromCents(usedCents)
		u.MaxAmount = fromCents(maxCents)
		u.Capped = capped != 0
		u.Remaining = fromCents(remCents)
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
