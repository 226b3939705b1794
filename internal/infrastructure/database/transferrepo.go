package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
	"github.com/nsparik/fund-transfer-engine/internal/domain/transfer"
)

// TransferRepository is the only place that knows the transfers table's
// columns (spec.md §4.4). Grounded on the teacher's CreateTransaction/
// GetTransactionHistory pair, generalized to the full transfer state
// machine and to the two extra lookups the idempotency design needs
// (FindByIdempotencyKey, FindByReference).
type TransferRepository struct {
	pool *pgxpool.Pool
}

func NewTransferRepository(pool *pgxpool.Pool) *TransferRepository {
	return &TransferRepository{pool: pool}
}

func (r *TransferRepository) db(tx pgx.Tx) dbtx {
	if tx != nil {
		return tx
	}
	return r.pool
}

const transferColumns = `id, reference, source_account_id, dest_account_id, amount, currency, description,
	idempotency_key, status, failure_code, failure_reason, created_at, updated_at, completed_at, failed_at, reversed_at, version`

func (r *TransferRepository) FindByID(ctx context.Context, tx pgx.Tx, id string) (*transfer.Transfer, error) {
	row := r.db(tx).QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
	return scanTransfer(row)
}

func (r *TransferRepository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*transfer.Transfer, error) {
	t, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domainerr.New(domainerr.CodeTransferNotFound, "transfer not found")
	}
	return t, nil
}

// GetByIDForUpdate locks the transfer row FOR UPDATE, required before any
// state transition (spec.md §5: "transfer state transitions hold FOR
// UPDATE on the transfer row").
func (r *TransferRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*transfer.Transfer, error) {
	row := tx.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
	t, err := scanTransfer(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domainerr.New(domainerr.CodeTransferNotFound, "transfer not found")
	}
	return t, nil
}

func (r *TransferRepository) FindByIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (*transfer.Transfer, error) {
	if key == "" {
		return nil, nil
	}
	row := r.db(tx).QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE idempotency_key = $1`, key)
	return scanTransfer(row)
}

func (r *TransferRepository) FindByReference(ctx context.Context, tx pgx.Tx, reference string) (*transfer.Transfer, error) {
	row := r.db(tx).QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE reference = $1`, reference)
	return scanTransfer(row)
}

// ListByAccount returns transfers where the account participates as either
// source or destination, optionally filtered by status, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID, status string, page, perPage int) ([]*transfer.Transfer, error) {
	offset := (page - 1) * perPage
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+transferColumns+` FROM transfers
			WHERE source_account_id = $1 OR dest_account_id = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`, accountID, perPage, offset)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+transferColumns+` FROM transfers
			WHERE (source_account_id = $1 OR dest_account_id = $1) AND status = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`, accountID, status, perPage, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransfers(rows)
}

func (r *TransferRepository) List(ctx context.Context, status string, page, perPage int) ([]*transfer.Transfer, error) {
	offset := (page - 1) * perPage
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.pool.Query(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, perPage, offset)
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+transferColumns+` FROM transfers WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, perPage, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransfers(rows)
}

// Save upserts the transfer row. Status "processing" must never reach
// here: it is the in-memory-only state spec.md §4.3 describes.
func (r *TransferRepository) Save(ctx context.Context, tx pgx.Tx, t *transfer.Transfer) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transfers (id, reference, source_account_id, dest_account_id, amount, currency, description,
			idempotency_key, status, failure_code, failure_reason, created_at, updated_at, completed_at, failed_at, reversed_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			failure_code = EXCLUDED.failure_code,
			failure_reason = EXCLUDED.failure_reason,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at,
			failed_at = EXCLUDED.failed_at,
			reversed_at = EXCLUDED.reversed_at,
			version = EXCLUDED.version
	`, t.ID, t.Reference, t.SourceAccountID, t.DestAccountID, t.Amount.Minor, string(t.Amount.Currency),
		nullableString(t.Description), nullableString(t.IdempotencyKey), string(t.Status),
		nullableString(t.FailureCode), nullableString(t.FailureReason),
		t.CreatedAt, t.UpdatedAt, t.CompletedAt, t.FailedAt, t.ReversedAt, t.Version)
	return err
}

func scanTransfer(row pgx.Row) (*transfer.Transfer, error) {
	var (
		id, reference, sourceID, destID, currency, status string
		amount, version                                   int64
		description, idempotencyKey, failureCode, reason  *string
		createdAt, updatedAt                               time.Time
		completedAt, failedAt, reversedAt                  *time.Time
	)
	if err := row.Scan(&id, &reference, &sourceID, &destID, &amount, &currency, &description,
		&idempotencyKey, &status, &failureCode, &reason, &createdAt, &updatedAt, &completedAt, &failedAt, &reversedAt, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	cur, err := money.NewCurrency(currency)
	if err != nil {
		return nil, err
	}

	return transfer.Reconstitute(id, reference, sourceID, destID, money.New(amount, cur),
		stringOrEmpty(description), stringOrEmpty(idempotencyKey), transfer.Status(status),
		stringOrEmpty(failureCode), stringOrEmpty(reason),
		createdAt, updatedAt, completedAt, failedAt, reversedAt, version), nil
}

func scanTransfers(rows pgx.Rows) ([]*transfer.Transfer, error) {
	var out []*transfer.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
