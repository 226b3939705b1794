package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/domain/outbox"
)

// OutboxRepository implements the transactional-outbox write path (append
// inside the business transaction) and the poller's claim/mark path
// (spec.md §4.10), grounded on the teacher's CreateTransaction append-only
// insert and its Kafka producer's at-least-once delivery assumption.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Append writes an outbox row inside the caller's transaction — it must
// never be called outside one, per the transactional-outbox pattern.
func (r *OutboxRepository) Append(ctx context.Context, tx pgx.Tx, e outbox.Event) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, occurred_at, created_at, published_at, attempt_count, last_error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,0,NULL)
	`, e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Payload, e.OccurredAt, e.CreatedAt)
	return err
}

// ClaimBatch selects up to limit unpublished rows FOR UPDATE SKIP LOCKED,
// ordered oldest first. Must be called inside tx — the caller is
// responsible for committing after MarkPublished/MarkFailed so the row
// lock and the status update are atomic (spec.md §4.10's critical
// invariant).
func (r *OutboxRepository) ClaimBatch(ctx context.Context, tx pgx.Tx, limit int) ([]outbox.Event, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, occurred_at, created_at, published_at, attempt_count, last_error
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outbox.Event
	for rows.Next() {
		var e outbox.Event
		var lastError *string
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload,
			&e.OccurredAt, &e.CreatedAt, &e.PublishedAt, &e.AttemptCount, &lastError); err != nil {
			return nil, err
		}
		if lastError != nil {
			e.LastError = *lastError
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, tx pgx.Tx, id string, publishedAt time.Time) error {
	_, err := tx.Exec(ctx, `UPDATE outbox_events SET published_at = $2 WHERE id = $1`, id, publishedAt)
	return err
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, tx pgx.Tx, id string, lastErr string) error {
	_, err := tx.Exec(ctx, `UPDATE outbox_events SET attempt_count = attempt_count + 1, last_error = $2 WHERE id = $1`, id, lastErr)
	return err
}

// Requeue resets attemptCount and lastError on a dead-lettered row so the
// poller picks it up again — the operator tooling spec.md §4.10 names.
func (r *OutboxRepository) Requeue(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox_events SET attempt_count = 0, last_error = NULL WHERE id = $1 AND published_at IS NULL`, id)
	return err
}

func (r *OutboxRepository) Backlog(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE published_at IS NULL`).Scan(&count)
	return count, err
}

// ListDeadLettered returns unpublished rows that have exhausted
// outbox.MaxAttempts, for the operator tooling spec.md §4.10 names.
func (r *OutboxRepository) ListDeadLettered(ctx context.Context) ([]outbox.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, occurred_at, created_at, published_at, attempt_count, last_error
		FROM outbox_events
		WHERE published_at IS NULL AND attempt_count >= $1
		ORDER BY created_at ASC
	`, outbox.MaxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outbox.Event
	for rows.Next() {
		var e outbox.Event
		var lastError *string
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload,
			&e.OccurredAt, &e.CreatedAt, &e.PublishedAt, &e.AttemptCount, &lastError); err != nil {
			return nil, err
		}
		if lastError != nil {
			e.LastError = *lastError
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
