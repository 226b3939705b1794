package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/domain/account"
	"github.com/nsparik/fund-transfer-engine/internal/domain/domainerr"
	"github.com/nsparik/fund-transfer-engine/internal/domain/money"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, letting read methods
// run either standalone or inside the caller's transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AccountRepository is the only place that knows the accounts table's
// columns (spec.md §4.4), grounded on the teacher's CreateAccount/
// GetAccount/UpdateAccount trio in postgres.go, generalized to UUID keys
// and an upsert-based Save.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) db(tx pgx.Tx) dbtx {
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *AccountRepository) FindByID(ctx context.Context, tx pgx.Tx, id string) (*account.Account, error) {
	return r.scanOne(ctx, r.db(tx), id, "")
}

func (r *AccountRepository) GetByID(ctx context.Context, tx pgx.Tx, id string) (*account.Account, error) {
	acc, err := r.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domainerr.New(domainerr.CodeAccountNotFound, "account not found")
	}
	return acc, nil
}

// GetByIDForUpdate must be called inside tx; it takes a pessimistic row
// lock, the basis for the account transfer coordinator's lock-ordering
// discipline (spec.md §4.6).
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*account.Account, error) {
	acc, err := r.scanOne(ctx, tx, id, "FOR UPDATE")
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domainerr.New(domainerr.CodeAccountNotFound, "account not found")
	}
	return acc, nil
}

func (r *AccountRepository) scanOne(ctx context.Context, q dbtx, id, suffix string) (*account.Account, error) {
	row := q.QueryRow(ctx, `
		SELECT id, owner_name, currency, balance, status, created_at, updated_at, closed_at, version
		FROM accounts WHERE id = $1 `+suffix, id)

	var (
		accID, ownerName, currency, status string
		balance, version                   int64
		createdAt, updatedAt               time.Time
		closedAt                           *time.Time
	)
	if err := row.Scan(&accID, &ownerName, &currency, &balance, &status, &createdAt, &updatedAt, &closedAt, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	cur, err := money.NewCurrency(currency)
	if err != nil {
		return nil, err
	}

	acc := account.Reconstitute(accID, ownerName, cur, balance, account.Status(status), createdAt, updatedAt, closedAt, version)
	return acc, nil
}

// Save upserts the account row (spec.md §4.4: every aggregate save is an
// upsert covering both first insertion and subsequent transitions). It
// must be called with a transaction: accounts are only ever mutated
// inside the transaction manager.
func (r *AccountRepository) Save(ctx context.Context, tx pgx.Tx, a *account.Account) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO accounts (id, owner_name, currency, balance, status, created_at, updated_at, closed_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			owner_name = EXCLUDED.owner_name,
			balance = EXCLUDED.balance,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			closed_at = EXCLUDED.closed_at,
			version = EXCLUDED.version
	`, a.ID, a.OwnerName, string(a.Currency), a.Balance.Minor, string(a.Status), a.CreatedAt, a.UpdatedAt, a.ClosedAt, a.Version)
	return err
}
