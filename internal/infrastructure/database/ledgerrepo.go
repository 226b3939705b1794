package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/domain/ledger"
)

// LedgerRepository centralises every ledger insert behind two recorder
// methods, the mitigation spec.md §9 calls for against the
// not-foreign-keyed transfer_id column. Grounded on the teacher's
// CreateTransaction (append-only insert) generalized to double-entry rows
// and the statement/reconciliation read paths (spec.md §4.11/§4.12).
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// RecordEntry inserts a single ledger row. The unique (account_id,
// transfer_id, entry_type) constraint makes repeated calls for the same
// logical entry idempotent; callers rely on ON CONFLICT DO NOTHING rather
// than pre-checking existence.
func (r *LedgerRepository) RecordEntry(ctx context.Context, tx pgx.Tx, e ledger.Entry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, counterparty_account_id, transfer_id, entry_type,
			transfer_type, amount, currency, balance_after, occurred_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (account_id, transfer_id, entry_type) DO NOTHING
	`, e.ID, e.AccountID, e.CounterpartyAccountID, e.TransferID, string(e.EntryType), string(e.TransferType),
		e.Amount, e.Currency, e.BalanceAfter, e.OccurredAt, e.CreatedAt)
	return err
}

// RecordPair writes both legs of a double-entry movement inside the same
// transaction — the only shape §3's invariant ("each completed transfer
// produces exactly two entries") should ever be written through.
func (r *LedgerRepository) RecordPair(ctx context.Context, tx pgx.Tx, debit, credit ledger.Entry) error {
	if err := r.RecordEntry(ctx, tx, debit); err != nil {
		return err
	}
	return r.RecordEntry(ctx, tx, credit)
}

// OpeningBalance returns the balanceAfter of the last entry strictly
// before `from`, or 0 when none exists (spec.md §4.11).
func (r *LedgerRepository) OpeningBalance(ctx context.Context, accountID string, from time.Time) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `
		SELECT balance_after FROM ledger_entries
		WHERE account_id = $1 AND occurred_at < $2
		ORDER BY occurred_at DESC, id DESC LIMIT 1
	`, accountID, from).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// ClosingBalance returns the balanceAfter of the last entry at-or-before
// `to` (strict ≤, microsecond-accurate per spec.md §4.11), or fallback
// when none exists in range.
func (r *LedgerRepository) ClosingBalance(ctx context.Context, accountID string, to time.Time, fallback int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `
		SELECT balance_after FROM ledger_entries
		WHERE account_id = $1 AND occurred_at <= $2
		ORDER BY occurred_at DESC, id DESC LIMIT 1
	`, accountID, to).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fallback, nil
		}
		return 0, err
	}
	return balance, nil
}

// Movements returns the paged, reverse-chronological ledger entries for an
// account within [from, to].
func (r *LedgerRepository) Movements(ctx context.Context, accountID string, from, to time.Time, page, perPage int) ([]ledger.Entry, error) {
	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, counterparty_account_id, transfer_id, entry_type, transfer_type,
			amount, currency, balance_after, occurred_at, created_at
		FROM ledger_entries
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`, accountID, from, to, perPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		var entryType, transferType string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.CounterpartyAccountID, &e.TransferID, &entryType, &transferType,
			&e.Amount, &e.Currency, &e.BalanceAfter, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EntryType = ledger.EntryType(entryType)
		e.TransferType = ledger.TransferType(transferType)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ReconciliationRow is one account's cross-check snapshot for spec.md
// §4.12: the last ledger balanceAfter (nil when no entries exist) and the
// summed credits-minus-debits across all of its entries.
type ReconciliationRow struct {
	AccountID      string
	AccountBalance int64
	LedgerSnapshot *int64
	ComputedSum    *int64
}

// AllForReconciliation joins every account with two lateral subqueries —
// the most recent ledger snapshot and the summed computed balance — in a
// single read-only statement, as spec.md §4.12 prescribes ("strictly
// read-only, no transactions, no row locks").
func (r *LedgerRepository) AllForReconciliation(ctx context.Context) ([]ReconciliationRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.balance, snap.balance_after, sums.computed
		FROM accounts a
		LEFT JOIN LATERAL (
			SELECT balance_after FROM ledger_entries le
			WHERE le.account_id = a.id
			ORDER BY le.occurred_at DESC, le.id DESC LIMIT 1
		) snap ON true
		LEFT JOIN LATERAL (
			SELECT SUM(CASE WHEN le.entry_type = 'credit' THEN le.amount ELSE -le.amount END) AS computed
			FROM ledger_entries le
			WHERE le.account_id = a.id
		) sums ON true
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReconciliationRow
	for rows.Next() {
		var row ReconciliationRow
		if err := rows.Scan(&row.AccountID, &row.AccountBalance, &row.LedgerSnapshot, &row.ComputedSum); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
