package database

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainidem "github.com/nsparik/fund-transfer-engine/internal/domain/idempotency"
)

// IdempotencyRepository backs the HTTP-layer idempotency cache (spec.md
// §4.9), grounded on the advisory-lock-per-key pattern the supplementary
// core-ledger pack repo uses for its own idempotency guard, wired onto the
// teacher's pgx stack.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

func (r *IdempotencyRepository) Find(ctx context.Context, key string) (*domainidem.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT key, request_hash, response_status, response_body, created_at, expires_at
		FROM idempotency_keys WHERE key = $1
	`, key)

	var rec domainidem.Record
	if err := row.Scan(&rec.Key, &rec.RequestHash, &rec.ResponseCode, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Insert persists the record with INSERT ... ON CONFLICT DO NOTHING, so a
// race between two identical first requests cannot corrupt the cache
// (spec.md §4.9's "post-response flow").
func (r *IdempotencyRepository) Insert(ctx context.Context, rec domainidem.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, request_hash, response_status, response_body, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (key) DO NOTHING
	`, rec.Key, rec.RequestHash, rec.ResponseCode, rec.ResponseBody, rec.CreatedAt, rec.ExpiresAt)
	return err
}

// WithKeyLock holds a session-level advisory lock scoped to a single
// idempotency key for the duration of fn, timing out after timeout
// (spec.md §4.9: "5 s timeout... on timeout 503 with Retry-After: 5").
// The lock is acquired and released on a single dedicated connection so
// the unlock always targets the session that holds it.
func (r *IdempotencyRepository) WithKeyLock(ctx context.Context, key string, timeout time.Duration, fn func(ctx context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	lockKey := keyLockID(key)

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	const pollInterval = 20 * time.Millisecond
	for {
		var acquired bool
		if err := conn.QueryRow(lockCtx, "SELECT pg_try_advisory_lock($1)", lockKey).Scan(&acquired); err != nil {
			return err
		}
		if acquired {
			break
		}
		select {
		case <-time.After(pollInterval):
		case <-lockCtx.Done():
			return ErrLockTimeout
		}
	}
	defer conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey)

	return fn(ctx)
}

// ErrLockTimeout signals the idempotency-lock-timeout path spec.md §6
// maps to a 503 with Retry-After.
var ErrLockTimeout = errors.New("idempotency lock timeout")

// keyLockID derives the SHA-256("idp:" + key) lock id spec.md §4.9
// names, truncated to an int64 the way Postgres advisory locks require.
func keyLockID(key string) int64 {
	sum := sha256.Sum256([]byte("idp:" + key))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
