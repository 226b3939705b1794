// Package outboxprocessor implements the outbox poll loop (spec.md §4.10):
// claim a batch FOR UPDATE SKIP LOCKED, dispatch each row through an
// EventPublisher, mark published or failed, dead-letter after MaxAttempts,
// all inside the one transaction that holds the row locks.
package outboxprocessor

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nsparik/fund-transfer-engine/internal/domain/outbox"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/logging"
	"github.com/nsparik/fund-transfer-engine/internal/pkg/metrics"
)

// Publisher dispatches one claimed event to its transport. It is the
// subset of messaging.EventPublisher this package needs.
type Publisher interface {
	Publish(e outbox.Event) error
}

type Outbox interface {
	ClaimBatch(ctx context.Context, tx pgx.Tx, limit int) ([]outbox.Event, error)
	MarkPublished(ctx context.Context, tx pgx.Tx, id string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id string, lastErr string) error
	Backlog(ctx context.Context) (int64, error)
}

type Clock func() time.Time

// Processor runs the batch-poll loop on an interval until Stop is called.
type Processor struct {
	pool      *pgxpool.Pool
	outbox    Outbox
	publisher Publisher
	batchSize int
	interval  time.Duration
	now       Clock

	stop chan struct{}
	done chan struct{}
}

func NewProcessor(pool *pgxpool.Pool, outboxRepo Outbox, publisher Publisher, batchSize int, interval time.Duration) *Processor {
	return &Processor{
		pool:      pool,
		outbox:    outboxRepo,
		publisher: publisher,
		batchSize: batchSize,
		interval:  interval,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run blocks, ticking every interval until the context is cancelled or Stop
// is called.
func (p *Processor) Run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil {
				logging.Error("outbox tick failed", err, nil)
			}
		}
	}
}

func (p *Processor) Stop() {
	close(p.stop)
	<-p.done
}

// Tick claims and dispatches a single batch inside one transaction — the
// FOR UPDATE SKIP LOCKED row lock and the published/failed updates must
// commit together, or concurrent workers could double-process a row
// (spec.md §4.10's critical invariant).
func (p *Processor) Tick(ctx context.Context) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	events, err := p.outbox.ClaimBatch(ctx, tx, p.batchSize)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	for _, e := range events {
		if e.AttemptCount >= outbox.MaxAttempts {
			logging.Error("CRITICAL: outbox event dead-lettered", nil, map[string]interface{}{
				"event_id": e.ID, "event_type": e.EventType, "aggregate_id": e.AggregateID, "attempt_count": e.AttemptCount, "last_error": e.LastError,
			})
			continue
		}

		if pubErr := p.publisher.Publish(e); pubErr != nil {
			if err := p.outbox.MarkFailed(ctx, tx, e.ID, pubErr.Error()); err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
			if e.AttemptCount+1 >= outbox.MaxAttempts {
				metrics.OutboxDeadLetteredTotal.Inc()
			}
			continue
		}

		if err := p.outbox.MarkPublished(ctx, tx, e.ID, p.now()); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		metrics.OutboxPublishedTotal.Inc()
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if backlog, err := p.outbox.Backlog(ctx); err == nil {
		metrics.OutboxBacklog.Set(float64(backlog))
	}
	return nil
}
