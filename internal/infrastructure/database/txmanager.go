// Package database holds the raw-SQL repositories and the transaction
// manager that wraps them — the only layer in the codebase allowed to know
// a table's columns (spec.md §4.4), grounded on the teacher's
// infrastructure/database package layout and its AtomicTransfer/
// AtomicWithdraw lock-ordering pattern in postgres.go.
package database

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/metrics"
)

// postgresDeadlockCode is Postgres' SQLSTATE for a detected deadlock,
// the equivalent of the "engine error 1213" spec.md §4.5 refers to.
const postgresDeadlockCode = "40P01"

const (
	defaultDeadlockRetries = 3
	backoffBaseMillis      = 10
	backoffSpanMillis      = 40
)

// TxManager exposes Transactional, the single operation spec.md §4.5
// names: run op inside a database transaction, commit on success, roll
// back and retry on deadlock, roll back and rethrow on any other failure.
type TxManager struct {
	pool               *pgxpool.Pool
	maxDeadlockRetries int
}

// NewTxManager builds a TxManager with the default retry bound
// (defaultDeadlockRetries). Use NewTxManagerWithRetries to honor
// config.LockConfig.DeadlockRetries instead.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool, maxDeadlockRetries: defaultDeadlockRetries}
}

// NewTxManagerWithRetries builds a TxManager whose deadlock-retry bound
// comes from config.LockConfig.DeadlockRetries rather than the built-in
// default, so operators can tune it per environment without a rebuild.
func NewTxManagerWithRetries(pool *pgxpool.Pool, maxDeadlockRetries int) *TxManager {
	if maxDeadlockRetries < 0 {
		maxDeadlockRetries = defaultDeadlockRetries
	}
	return &TxManager{pool: pool, maxDeadlockRetries: maxDeadlockRetries}
}

// Transactional runs op up to maxDeadlockRetries+1 times. op must be safe
// to re-execute: it should reload any aggregate it locks rather than
// mutate captured state across attempts.
func (m *TxManager) Transactional(ctx context.Context, op func(ctx context.Context, tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt <= m.maxDeadlockRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(backoffBaseMillis+rand.Intn(backoffSpanMillis)) * time.Millisecond * time.Duration(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			metrics.DeadlockRetriesTotal.Inc()
			logging.Warn("retrying transaction after deadlock", map[string]interface{}{
				"attempt": attempt,
			})
		}

		err := m.runOnce(ctx, op)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isDeadlock(err) {
			return err
		}
	}
	return lastErr
}

func (m *TxManager) runOnce(ctx context.Context, op func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}

	if err := op(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func isDeadlock(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresDeadlockCode
	}
	return false
}
